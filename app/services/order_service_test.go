package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func placeOrder(t *testing.T, f *checkoutFixture) *models.Order {
	t.Helper()
	order, err := f.svc.Checkout(context.Background(), f.user.ID, card)
	require.NoError(t, err)
	return order
}

func TestUpdateStatusPermissive(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	order := placeOrder(t, f)
	rec := &recorder{}
	svc := services.NewOrderService(f.db, nil, rec)

	updated, err := svc.UpdateStatus(ctx, order.ID, " Delivered ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	updated, err = svc.UpdateStatus(ctx, order.ID, models.StatusPending)
	require.NoError(t, err, "any transition is allowed by default")
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, order.Total.String(), updated.Total.String(), "only status changes")

	require.Len(t, rec.payloads, 2)
	changed := rec.payloads[1].(events.OrderStatusChanged)
	assert.Equal(t, events.OrderStatusChangedEvent, rec.names[1])
	assert.Equal(t, models.StatusDelivered, changed.From)
	assert.Equal(t, models.StatusPending, changed.To)
}

func TestUpdateStatusValidation(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	order := placeOrder(t, f)
	svc := services.NewOrderService(f.db, nil, nil)

	_, err := svc.UpdateStatus(ctx, order.ID, "refunded")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.UpdateStatus(ctx, 9999, models.StatusShipped)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStatusStrict(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	order := placeOrder(t, f)
	rec := &recorder{}
	svc := services.NewOrderService(f.db, models.StrictTransitions, rec)

	_, err := svc.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err), "pending cannot jump to delivered")

	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusShipped)
	require.NoError(t, err, "same status is a no-op")
	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusPending)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Len(t, rec.names, 2)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	first := placeOrder(t, f)
	_, err := f.carts.Add(ctx, f.user.ID, f.b.ID, 1)
	require.NoError(t, err)
	second := placeOrder(t, f)

	svc := services.NewOrderService(f.db, nil, nil)
	mine, err := svc.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)
	assert.Len(t, mine[1].Items, 2)
	require.NotNil(t, mine[0].User, "both listings carry the owner")
	assert.Equal(t, f.user.Email, mine[0].User.Email)

	none, err := svc.ListForUser(ctx, 4242)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].User)
	assert.Equal(t, f.user.Email, all[0].User.Email)
}
