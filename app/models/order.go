package models

import (
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []string{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

// Order is the financial record of a checkout. Only Status changes after
// creation.
type Order struct {
	ID              uint        `gorm:"primaryKey"                       json:"id"`
	UserID          uint        `gorm:"not null;index"                   json:"userId"`
	User            *User       `json:"user,omitempty"`
	ShippingAddress string      `gorm:"type:text;not null"               json:"shippingAddress"`
	PaymentMethod   string      `gorm:"size:100;not null"                json:"paymentMethod"`
	Total           Money       `gorm:"type:decimal(10,2);not null"      json:"total"`
	Status          string      `gorm:"size:20;not null;default:pending;index" json:"status"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem carries the unit price captured at checkout.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey"                  json:"id"`
	OrderID   uint      `gorm:"not null;index"              json:"orderId"`
	ProductID uint      `gorm:"not null;index"              json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null"                    json:"quantity"`
	Price     Money     `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeStatus trims and lowercases s and reports whether it is valid.
func NormalizeStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range OrderStatuses {
		if v == s {
			return s, true
		}
	}
	return s, false
}

// TransitionPolicy decides whether an order may move between statuses.
type TransitionPolicy interface {
	Allow(from, to string) bool
}

type permissive struct{}

func (permissive) Allow(_, _ string) bool { return true }

type transitionTable map[string][]string

func (t transitionTable) Allow(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

var (
	// PermissiveTransitions allows any status to follow any other.
	PermissiveTransitions TransitionPolicy = permissive{}

	// StrictTransitions only moves orders forward. Delivered and cancelled
	// are terminal.
	StrictTransitions TransitionPolicy = transitionTable{
		StatusPending: {StatusShipped, StatusCancelled},
		StatusShipped: {StatusDelivered, StatusCancelled},
	}
)
