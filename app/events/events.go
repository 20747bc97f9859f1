// Package events names the domain events published on the event bus.
package events

import "github.com/shashiranjanraj/storefront/app/models"

const (
	OrderPlacedEvent        = "order.placed"
	OrderStatusChangedEvent = "order.status_changed"
)

type OrderPlaced struct {
	OrderID uint         `json:"orderId"`
	UserID  uint         `json:"userId"`
	Total   models.Money `json:"total"`
	Items   int          `json:"items"`
}

type OrderStatusChanged struct {
	OrderID uint   `json:"orderId"`
	UserID  uint   `json:"userId"`
	From    string `json:"from"`
	To      string `json:"to"`
}
