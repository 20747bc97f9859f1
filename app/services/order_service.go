package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type OrderService struct {
	orders *repositories.OrderRepository
	policy models.TransitionPolicy
	events event.Dispatcher
}

// NewOrderService uses PermissiveTransitions when policy is nil.
func NewOrderService(db *gorm.DB, policy models.TransitionPolicy, events event.Dispatcher) *OrderService {
	if policy == nil {
		policy = models.PermissiveTransitions
	}
	return &OrderService{
		orders: repositories.NewOrderRepository(db),
		policy: policy,
		events: events,
	}
}

// UpdateStatus changes only the order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next, ok := models.NormalizeStatus(status)
	if !ok {
		return nil, apperr.InvalidInput(fmt.Sprintf("Invalid status. Must be one of: %s", strings.Join(models.OrderStatuses, ", ")))
	}

	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}

	prev := order.Status
	if !s.policy.Allow(prev, next) {
		return nil, apperr.InvalidInput(fmt.Sprintf("Cannot change order status from %s to %s", prev, next))
	}
	if prev == next {
		return &order, nil
	}

	if err := s.orders.SetStatus(ctx, &order, next); err != nil {
		return nil, internal(err)
	}
	metrics.RecordStatusChange(next)

	if s.events != nil {
		s.events.Dispatch(ctx, events.OrderStatusChangedEvent, events.OrderStatusChanged{
			OrderID: order.ID,
			UserID:  order.UserID,
			From:    prev,
			To:      next,
		})
	}
	return &order, nil
}

func (s *OrderService) Find(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	return &order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	return orders, internal(err)
}

// ListAll returns every order with its customer.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	return orders, internal(err)
}
