package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress" validate:"required"`
	PaymentMethod   string `json:"paymentMethod"   validate:"required,max=100"`
}

// CheckoutService turns a cart into an order in one transaction.
type CheckoutService struct {
	db     *gorm.DB
	carts  *repositories.CartRepository
	orders *repositories.OrderRepository
	events event.Dispatcher
}

// NewCheckoutService publishes order.placed on events; events may be nil.
func NewCheckoutService(db *gorm.DB, events event.Dispatcher) *CheckoutService {
	return &CheckoutService{
		db:     db,
		carts:  repositories.NewCartRepository(db),
		orders: repositories.NewOrderRepository(db),
		events: events,
	}
}

// Checkout reads the user's cart, writes the order and its lines at current
// prices and empties the cart. Either all of it commits or none of it does.
// The returned order is re-read after commit.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (order *models.Order, err error) {
	defer func() { metrics.RecordCheckout(outcome(err)) }()

	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.ShippingAddress == "" || in.PaymentMethod == "" {
		return nil, apperr.InvalidInput("Shipping address and payment method are required")
	}

	var placed models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.WithTx(tx).FindWithItems(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.EmptyCart("Cart is empty")
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.EmptyCart("Cart is empty")
		}

		total, err := CartTotal(cart.Items)
		if err != nil {
			return err
		}

		placed = models.Order{
			UserID:          userID,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
			Total:           models.NewMoney(total),
			Status:          models.StatusPending,
		}
		orders := s.orders.WithTx(tx)
		if err := orders.Create(ctx, &placed); err != nil {
			return err
		}

		lines := collection.Map(cart.Items, func(it models.CartItem) models.OrderItem {
			return models.OrderItem{
				OrderID:   placed.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Product.Price,
			}
		})
		if err := orders.CreateItems(ctx, lines); err != nil {
			return err
		}

		_, err = s.carts.WithTx(tx).ClearItems(ctx, cart.ID)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindEmptyCart {
			return nil, err
		}
		return nil, apperr.TransactionFailure("Checkout failed", err)
	}

	log := logger.WithCtx(ctx)
	log.Info("order placed", "order_id", placed.ID, "user_id", userID, "total", placed.Total.StringFixed(2))

	reloaded, err := s.orders.Find(ctx, placed.ID)
	if err != nil {
		log.Error("reload placed order", "order_id", placed.ID, "error", err)
		return nil, apperr.Internal("Order placed but could not be loaded", err)
	}

	if s.events != nil {
		s.events.Dispatch(ctx, events.OrderPlacedEvent, events.OrderPlaced{
			OrderID: reloaded.ID,
			UserID:  reloaded.UserID,
			Total:   reloaded.Total,
			Items:   len(reloaded.Items),
		})
	}
	return &reloaded, nil
}
