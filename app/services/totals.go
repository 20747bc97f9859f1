package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/collection"
)

// ErrStaleProduct marks a cart line whose product no longer resolves.
var ErrStaleProduct = errors.New("cart item references a missing product")

// LineTotal is quantity × price.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// CartTotal sums quantity × current product price over items. Every item must
// carry its product.
func CartTotal(items []models.CartItem) (decimal.Decimal, error) {
	for _, it := range items {
		if it.Product == nil {
			return decimal.Zero, fmt.Errorf("%w: product %d", ErrStaleProduct, it.ProductID)
		}
	}
	return collection.Reduce(items, decimal.Zero, func(sum decimal.Decimal, it models.CartItem) decimal.Decimal {
		return sum.Add(LineTotal(it.Product.Price.Decimal, it.Quantity))
	}), nil
}
