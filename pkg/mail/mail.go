// Package mail sends email through SMTP. When MAIL_HOST is unset, FromConfig
// returns a LogMailer that only logs what would have been sent.
//
//	body, _ := mail.Render(tmpl, data)
//	err := mailer.Send(ctx, mail.Message{
//	    To:      []string{user.Email},
//	    Subject: "Your order #12",
//	    Body:    body,
//	    HTML:    true,
//	})
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// FromConfig returns an SMTPMailer for MAIL_* settings, or a LogMailer when
// MAIL_HOST is empty.
func FromConfig() Mailer {
	cfg := SMTP{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
	}
	if cfg.Host == "" {
		return LogMailer{From: cfg.From}
	}
	return &SMTPMailer{cfg: cfg}
}

// Render executes an html/template source with data.
func Render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// SMTPMailer sends over SMTP: implicit TLS on port 465, STARTTLS otherwise.
type SMTPMailer struct {
	cfg SMTP
}

func NewSMTPMailer(cfg SMTP) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}
	raw := buildRaw(s.cfg.From, msg)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	rcpts := append(append([]string(nil), msg.To...), msg.Cc...)

	done := make(chan error, 1)
	go func() {
		if s.cfg.Port == 465 {
			done <- s.sendTLS(addr, auth, rcpts, raw)
			return
		}
		done <- smtp.SendMail(addr, auth, s.cfg.From, rcpts, raw)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: send %q: %w", msg.Subject, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPMailer) sendTLS(addr string, auth smtp.Auth, to []string, raw []byte) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

func buildRaw(from string, msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From string
}

func (l LogMailer) Send(ctx context.Context, msg Message) error {
	logger.WithCtx(ctx).Info("mail: not sent, MAIL_HOST unset",
		"from", l.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"bytes", len(msg.Body),
	)
	return nil
}
