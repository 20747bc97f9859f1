package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testutil"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

type recorder struct {
	mu       sync.Mutex
	names    []string
	payloads []any
}

func (r *recorder) Dispatch(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.payloads = append(r.payloads, payload)
}

type checkoutFixture struct {
	db     *gorm.DB
	user   models.User
	a, b   models.Product
	carts  *services.CartService
	events *recorder
	svc    *services.CheckoutService
}

// newCheckoutFixture fills the user's cart with A 10.00 x2 and B 5.00 x1.
func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := &checkoutFixture{
		db:     db,
		user:   testutil.User(t, db, "ada@example.com", models.RoleCustomer),
		a:      testutil.Product(t, db, "A", "10.00", nil),
		b:      testutil.Product(t, db, "B", "5.00", nil),
		carts:  services.NewCartService(db),
		events: &recorder{},
	}
	f.svc = services.NewCheckoutService(db, f.events)

	_, err := f.carts.Add(ctx, f.user.ID, f.a.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, f.user.ID, f.b.ID, 1)
	require.NoError(t, err)
	return f
}

func (f *checkoutFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

var card = services.CheckoutInput{ShippingAddress: "X", PaymentMethod: "card"}

func TestCheckoutCapturesTotalAndPrices(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	order, err := f.svc.Checkout(ctx, f.user.ID, card)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("25.00").Equal(order.Total.Decimal), order.Total.String())
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "X", order.ShippingAddress)
	assert.Equal(t, "card", order.PaymentMethod)

	require.Len(t, order.Items, 2)
	prices := map[uint]models.Money{}
	for _, it := range order.Items {
		prices[it.ProductID] = it.Price
		require.NotNil(t, it.Product)
	}
	assert.True(t, decimal.RequireFromString("10.00").Equal(prices[f.a.ID].Decimal))
	assert.True(t, decimal.RequireFromString("5.00").Equal(prices[f.b.ID].Decimal))

	view, err := f.carts.View(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, int64(1), f.count(t, &models.Cart{}), "cart row remains")

	require.Len(t, f.events.names, 1)
	assert.Equal(t, events.OrderPlacedEvent, f.events.names[0])
	placed := f.events.payloads[0].(events.OrderPlaced)
	assert.Equal(t, order.ID, placed.OrderID)
	assert.Equal(t, 2, placed.Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	svc := services.NewCheckoutService(db, nil)

	_, err := svc.Checkout(ctx, user.ID, card)
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err), "no cart")

	mug := testutil.Product(t, db, "Mug", "3.00", nil)
	carts := services.NewCartService(db)
	_, err = carts.Add(ctx, user.ID, mug.ID, 1)
	require.NoError(t, err)
	_, err = carts.Clear(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, user.ID, card)
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err), "empty cart")

	var orders, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
}

func TestCheckoutRequiresAddressAndPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.Checkout(context.Background(), f.user.ID, services.CheckoutInput{ShippingAddress: "  ", PaymentMethod: "card"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestLaterPriceChangeLeavesOrderAlone(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	order, err := f.svc.Checkout(ctx, f.user.ID, card)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&f.a).Update("price", models.MustMoney("99.99")).Error)

	reloaded, err := services.NewOrderService(f.db, nil, nil).Find(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25.00").Equal(reloaded.Total.Decimal))
	for _, it := range reloaded.Items {
		if it.ProductID == f.a.ID {
			assert.True(t, decimal.RequireFromString("10.00").Equal(it.Price.Decimal), it.Price.String())
			assert.True(t, decimal.RequireFromString("99.99").Equal(it.Product.Price.Decimal))
		}
	}
}

func TestCheckoutIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "order_items" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))

	_, err := f.svc.Checkout(ctx, f.user.ID, card)
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransactionFailure, apperr.KindOf(err))
	assert.ErrorContains(t, err, "injected failure")

	assert.Zero(t, f.count(t, &models.Order{}), "order rolled back")
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Equal(t, int64(2), f.count(t, &models.CartItem{}), "cart untouched")
	assert.Empty(t, f.events.names)
}

func TestCheckoutRollsBackOnDriverError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(1, 7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).AddRow(1, 1, 10, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(10, "A", "10.00"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = services.NewCheckoutService(db, nil).Checkout(context.Background(), 7, card)
	assert.Equal(t, apperr.KindTransactionFailure, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutClearsOnlyOwnCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	other := testutil.User(t, f.db, "grace@example.com", models.RoleCustomer)
	_, err := f.carts.Add(ctx, other.ID, f.a.ID, 4)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.user.ID, card)
	require.NoError(t, err)

	view, err := f.carts.View(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
}

func TestCheckoutFailsOnDeletedProduct(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	require.NoError(t, f.db.Delete(&f.b).Error)

	_, err := f.svc.Checkout(ctx, f.user.ID, card)
	assert.Equal(t, apperr.KindTransactionFailure, apperr.KindOf(err))
	assert.ErrorIs(t, err, services.ErrStaleProduct)

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Equal(t, int64(2), f.count(t, &models.CartItem{}))
}
