package models

import "time"

const (
	RoleCustomer        = "customer"
	RoleAdministrator   = "administrator"
	RoleBlockedCustomer = "blocked-customer"
)

// User is a storefront account. Password holds the bcrypt hash and is never
// serialised.
type User struct {
	ID        uint      `gorm:"primaryKey"                      json:"id"`
	Name      string    `gorm:"size:255;not null"               json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"   json:"email"`
	Password  string    `gorm:"size:255;not null"               json:"-"`
	Phone     string    `gorm:"size:50"                         json:"phone"`
	Address   string    `gorm:"type:text"                       json:"address"`
	Role      string    `gorm:"size:32;not null;default:customer;index" json:"role"`
	CreatedAt time.Time `json:"registeredAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) IsAdministrator() bool { return u.Role == RoleAdministrator }
func (u User) IsBlocked() bool       { return u.Role == RoleBlockedCustomer }
