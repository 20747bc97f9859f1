// Package jobs holds the queued background jobs.
package jobs

import (
	"context"
	"fmt"
	"html/template"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

const SendOrderConfirmationName = "order.confirmation"

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<p>Hi {{.User.Name}},</p>
<p>Thanks for your order #{{.Order.ID}}. We will ship it to:</p>
<p>{{.Order.ShippingAddress}}</p>
<table>
{{range .Order.Items}}<tr><td>{{if .Product}}{{.Product.Name}}{{else}}Product #{{.ProductID}}{{end}}</td><td>{{.Quantity}} &times; {{.Price.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Order.Total.StringFixed 2}}</strong> ({{.Order.PaymentMethod}})</p>
`))

// SendOrderConfirmation mails the customer a summary of a placed order.
type SendOrderConfirmation struct {
	OrderID uint `json:"orderId"`

	orders *repositories.OrderRepository
	users  *repositories.UserRepository
	mailer mail.Mailer
}

// NewSendOrderConfirmation returns the queue factory for the job.
func NewSendOrderConfirmation(db *gorm.DB, mailer mail.Mailer) func() queue.Job {
	orders := repositories.NewOrderRepository(db)
	users := repositories.NewUserRepository(db)
	return func() queue.Job {
		return &SendOrderConfirmation{orders: orders, users: users, mailer: mailer}
	}
}

func (*SendOrderConfirmation) JobName() string { return SendOrderConfirmationName }

func (j *SendOrderConfirmation) Handle(ctx context.Context) error {
	order, err := j.orders.Find(ctx, j.OrderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", j.OrderID, err)
	}
	user, err := j.users.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", order.UserID, err)
	}

	body, err := mail.Render(confirmationTmpl, struct {
		User  models.User
		Order models.Order
	}{user, order})
	if err != nil {
		return err
	}

	logger.WithCtx(ctx).Info("sending order confirmation", "order_id", order.ID, "user_id", user.ID)
	return j.mailer.Send(ctx, mail.Message{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Your order #%d", order.ID),
		Body:    body,
		HTML:    true,
	})
}
