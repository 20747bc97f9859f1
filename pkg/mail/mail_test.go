package mail

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawHeaders(t *testing.T) {
	raw := string(buildRaw("orders@shop.test", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Order #7\r\nBcc: evil@example.com",
		Body:    "<p>thanks</p>",
		HTML:    true,
	}))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "From: orders@shop.test")
	assert.Contains(t, head, "To: a@example.com, b@example.com")
	assert.Contains(t, head, `Content-Type: text/html; charset="UTF-8"`)
	assert.NotContains(t, head, "\r\nBcc:")
	assert.Equal(t, "<p>thanks</p>", body)
}

func TestRenderEscapes(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`<p>Ship to {{.Address}}</p>`))
	out, err := Render(tmpl, map[string]string{"Address": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Ship to &lt;script&gt;</p>", out)
}

func TestSMTPMailerRequiresRecipients(t *testing.T) {
	err := NewSMTPMailer(SMTP{Host: "localhost", Port: 2525}).Send(context.Background(), Message{Subject: "x"})
	assert.EqualError(t, err, "mail: no recipients")
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, LogMailer{From: "x@y.z"}.Send(context.Background(), Message{To: []string{"a@b.c"}}))
}
