package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

// GetOrCreate returns the user's cart, inserting it when absent. created
// reports which branch ran. The insert relies on the unique user_id index,
// so concurrent callers converge on one row.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID uint) (cart models.Cart, created bool, err error) {
	db := r.db.WithContext(ctx)
	cart = models.Cart{UserID: userID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart)
	if res.Error != nil {
		return cart, false, res.Error
	}
	if res.RowsAffected == 1 {
		return cart, true, nil
	}
	cart = models.Cart{}
	err = db.Where("user_id = ?", userID).First(&cart).Error
	return cart, false, err
}

func (r *CartRepository) FindByUser(ctx context.Context, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	return cart, err
}

// FindWithItems loads the cart, its items and their live products.
// Soft-deleted products are left nil.
func (r *CartRepository) FindWithItems(ctx context.Context, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	return cart, err
}

// AddItem inserts the (cart, product) line or atomically increments an
// existing one by quantity, then reloads it with its product.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID uint, quantity int) (item models.CartItem, created bool, err error) {
	db := r.db.WithContext(ctx)
	item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&item)
	if res.Error != nil {
		return item, false, res.Error
	}
	created = res.RowsAffected == 1

	if !created {
		err = db.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
		if err != nil {
			return item, false, err
		}
	}

	item, err = r.FindItem(ctx, cartID, productID)
	return item, created, err
}

func (r *CartRepository) FindItem(ctx context.Context, cartID, productID uint) (models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	return item, err
}

func (r *CartRepository) SetQuantity(ctx context.Context, item *models.CartItem, quantity int) error {
	err := r.db.WithContext(ctx).Model(item).Update("quantity", quantity).Error
	if err == nil {
		item.Quantity = quantity
	}
	return err
}

// DeleteItem returns the number of rows removed.
func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// ClearItems deletes every line of the cart; the cart row stays.
func (r *CartRepository) ClearItems(ctx context.Context, cartID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
