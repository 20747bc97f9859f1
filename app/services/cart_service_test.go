package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testutil"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func TestAddMergesRepeatedProduct(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "10.00", nil)
	svc := services.NewCartService(db)

	first, err := svc.Add(ctx, user.ID, mug.ID, 2)
	require.NoError(t, err)
	assert.True(t, first.CartCreated)
	assert.True(t, first.ItemCreated)
	assert.Equal(t, 2, first.Item.Quantity)
	require.NotNil(t, first.Item.Product)
	assert.Equal(t, "Mug", first.Item.Product.Name)

	second, err := svc.Add(ctx, user.ID, mug.ID, 3)
	require.NoError(t, err)
	assert.False(t, second.CartCreated)
	assert.False(t, second.ItemCreated)
	assert.Equal(t, 5, second.Item.Quantity)
	assert.Equal(t, first.Item.ID, second.Item.ID)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "10.00", nil)
	svc := services.NewCartService(db)

	_, err := svc.Add(ctx, user.ID, mug.ID, 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.Add(ctx, user.ID, 0, 1)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestAddMissingProductCreatesNothing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	gone := testutil.Product(t, db, "Gone", "1.00", nil)
	require.NoError(t, db.Delete(&gone).Error)
	svc := services.NewCartService(db)

	_, err := svc.Add(ctx, user.ID, 999, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Add(ctx, user.ID, gone.ID, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "10.00", nil)
	plate := testutil.Product(t, db, "Plate", "4.00", nil)
	svc := services.NewCartService(db)

	_, err := svc.UpdateQuantity(ctx, user.ID, mug.ID, 2)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "no cart yet")

	_, err = svc.Add(ctx, user.ID, mug.ID, 3)
	require.NoError(t, err)

	for _, q := range []int{0, -1} {
		_, err = svc.UpdateQuantity(ctx, user.ID, mug.ID, q)
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	}
	var line models.CartItem
	require.NoError(t, db.Where("product_id = ?", mug.ID).First(&line).Error)
	assert.Equal(t, 3, line.Quantity)

	_, err = svc.UpdateQuantity(ctx, user.ID, plate.ID, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "item not in cart")

	item, err := svc.UpdateQuantity(ctx, user.ID, mug.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
	require.NoError(t, db.First(&line, line.ID).Error)
	assert.Equal(t, 7, line.Quantity)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "10.00", nil)
	plate := testutil.Product(t, db, "Plate", "4.00", nil)
	svc := services.NewCartService(db)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Remove(ctx, user.ID, mug.ID)), "no cart yet")

	_, err := svc.Add(ctx, user.ID, mug.ID, 1)
	require.NoError(t, err)

	err = svc.Remove(ctx, user.ID, plate.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	view, err := svc.View(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1, "cart unmodified")

	require.NoError(t, svc.Remove(ctx, user.ID, mug.ID))
	view, err = svc.View(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "10.00", nil)
	plate := testutil.Product(t, db, "Plate", "4.00", nil)
	svc := services.NewCartService(db)

	res, err := svc.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, res.CartFound)

	_, err = svc.Add(ctx, user.ID, mug.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, user.ID, plate.ID, 2)
	require.NoError(t, err)

	res, err = svc.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, res.CartFound)
	assert.Equal(t, int64(2), res.Removed)

	res, err = svc.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, res.CartFound)
	assert.Zero(t, res.Removed)
}

func TestViewComputesTotal(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	svc := services.NewCartService(db)

	view, err := svc.View(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	a := testutil.Product(t, db, "A", "10.00", nil)
	b := testutil.Product(t, db, "B", "0.10", nil)
	_, err = svc.Add(ctx, user.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, user.ID, b.ID, 3)
	require.NoError(t, err)

	view, err = svc.View(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.True(t, decimal.RequireFromString("20.30").Equal(view.Total.Decimal), view.Total.String())
	assert.Equal(t, "A", view.Items[0].Product.Name)
}

func TestCartTotalRejectsStaleLines(t *testing.T) {
	_, err := services.CartTotal([]models.CartItem{{ProductID: 4, Quantity: 1}})
	assert.ErrorIs(t, err, services.ErrStaleProduct)

	total, err := services.CartTotal(nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestConcurrentAddsDoNotLoseQuantity(t *testing.T) {
	const adds = 40
	ctx := context.Background()
	db := testutil.NewFileDB(t, 8)
	user := testutil.User(t, db, "ada@example.com", models.RoleCustomer)
	mug := testutil.Product(t, db, "Mug", "1.10", nil)
	svc := services.NewCartService(db)

	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for range adds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, user.ID, mug.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view, err := svc.View(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, adds, view.Items[0].Quantity)
	assert.Equal(t, "44.00", view.Total.StringFixed(2))
}
