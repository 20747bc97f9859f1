package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products. Image is a storage key.
type Category struct {
	ID          uint      `gorm:"primaryKey"                    json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text"                     json:"description"`
	Image       string    `gorm:"size:512"                      json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product is soft-deleted so historical order lines keep resolving it.
// Images are storage keys; Specifications is free-form.
type Product struct {
	ID             uint           `gorm:"primaryKey"                       json:"id"`
	Name           string         `gorm:"size:255;not null;index"          json:"name"`
	Description    string         `gorm:"type:text"                        json:"description"`
	Price          Money          `gorm:"type:decimal(10,2);not null"      json:"price"`
	Stock          int            `gorm:"not null;default:0"               json:"stock"`
	CategoryID     *uint          `gorm:"index"                            json:"categoryId"`
	Category       *Category      `gorm:"constraint:OnDelete:SET NULL"     json:"category,omitempty"`
	Images         []string       `gorm:"serializer:json;type:text"        json:"images"`
	Featured       bool           `gorm:"not null;default:false;index"     json:"featured"`
	Specifications map[string]any `gorm:"serializer:json;type:text"        json:"specifications"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index"                            json:"-"`
}
