package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// AddResult reports the resulting line and which rows Add created.
type AddResult struct {
	Item        models.CartItem
	CartCreated bool
	ItemCreated bool
}

// ClearResult reports whether the user had a cart and how many lines went.
type ClearResult struct {
	CartFound bool
	Removed   int64
}

// CartView is a cart with its computed total. Lines whose product has been
// deleted are listed without a product and excluded from Total.
type CartView struct {
	Items []models.CartItem `json:"cartItems"`
	Total models.Money      `json:"total"`
}

type CartService struct {
	db       *gorm.DB
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		db:       db,
		carts:    repositories.NewCartRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// Add puts quantity of the product into the user's cart, creating the cart
// and the line as needed. Repeated adds increment the line.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (res AddResult, err error) {
	defer func() { metrics.RecordCartMutation("add", outcome(err)) }()

	if productID == 0 {
		return res, apperr.InvalidInput("productId is required")
	}
	if quantity < 1 {
		return res, apperr.InvalidInput("Quantity must be at least 1")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.products.WithTx(tx).Exists(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Product not found")
		}

		carts := s.carts.WithTx(tx)
		cart, cartCreated, err := carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		item, itemCreated, err := carts.AddItem(ctx, cart.ID, productID, quantity)
		if err != nil {
			return err
		}
		res = AddResult{Item: item, CartCreated: cartCreated, ItemCreated: itemCreated}
		return nil
	})
	return res, internal(err)
}

// UpdateQuantity sets the line's quantity absolutely.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (item models.CartItem, err error) {
	defer func() { metrics.RecordCartMutation("update", outcome(err)) }()

	if quantity < 1 {
		return item, apperr.InvalidInput("Quantity must be at least 1")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return item, notFound(err, "Cart not found")
	}
	item, err = s.carts.FindItem(ctx, cart.ID, productID)
	if err != nil {
		return item, notFound(err, "Item not found in cart")
	}
	if err := s.carts.SetQuantity(ctx, &item, quantity); err != nil {
		return item, internal(err)
	}
	return item, nil
}

// Remove deletes the product's line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) (err error) {
	defer func() { metrics.RecordCartMutation("remove", outcome(err)) }()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return notFound(err, "Cart not found")
	}
	n, err := s.carts.DeleteItem(ctx, cart.ID, productID)
	if err != nil {
		return internal(err)
	}
	if n == 0 {
		return apperr.NotFound("Item not found in cart")
	}
	return nil
}

// Clear empties the cart. It succeeds when there is no cart at all.
func (s *CartService) Clear(ctx context.Context, userID uint) (res ClearResult, err error) {
	defer func() { metrics.RecordCartMutation("clear", outcome(err)) }()

	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, nil
	}
	if err != nil {
		return res, internal(err)
	}
	n, err := s.carts.ClearItems(ctx, cart.ID)
	if err != nil {
		return res, internal(err)
	}
	return ClearResult{CartFound: true, Removed: n}, nil
}

// View returns the cart lines with products and the live total.
func (s *CartService) View(ctx context.Context, userID uint) (CartView, error) {
	view := CartView{Items: []models.CartItem{}, Total: models.NewMoney(decimal.Zero)}

	cart, err := s.carts.FindWithItems(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return view, internal(err)
	}

	if cart.Items != nil {
		view.Items = cart.Items
	}
	live := collection.Filter(view.Items, func(it models.CartItem) bool { return it.Product != nil })
	total, err := CartTotal(live)
	view.Total = models.NewMoney(total)
	return view, internal(err)
}
