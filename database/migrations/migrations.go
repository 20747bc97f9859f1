// Package migrations lists the storefront schema changes in order.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

// All returns every migration; the runner sorts them by name.
func All() []migration.Entry {
	return []migration.Entry{
		{Name: "20260101000000_create_users_table", Migration: table(&models.User{})},
		{Name: "20260101000001_create_categories_table", Migration: table(&models.Category{})},
		{Name: "20260101000002_create_products_table", Migration: table(&models.Product{})},
		{Name: "20260101000003_create_carts_table", Migration: table(&models.Cart{})},
		{Name: "20260101000004_create_cart_items_table", Migration: table(&models.CartItem{})},
		{Name: "20260101000005_create_orders_table", Migration: table(&models.Order{})},
		{Name: "20260101000006_create_order_items_table", Migration: table(&models.OrderItem{})},
		{Name: "20260101000007_create_failed_jobs_table", Migration: table(&queue.FailedJob{})},
	}
}

// table auto-migrates model on Up and drops its table on Down.
func table(model any) migration.Migration {
	return migration.Func{
		UpFn:   func(tx *gorm.DB) error { return tx.AutoMigrate(model) },
		DownFn: func(tx *gorm.DB) error { return tx.Migrator().DropTable(model) },
	}
}
