package models

import "time"

// Cart is created lazily, one per user.
type Cart struct {
	ID        uint       `gorm:"primaryKey"              json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex"    json:"userId"`
	Items     []CartItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is unique per (cart, product); Quantity is at least 1.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product"     json:"cartId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null"                                  json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
