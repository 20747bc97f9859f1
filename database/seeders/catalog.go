package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

const (
	AdminEmail    = "admin@storefront.local"
	CustomerEmail = "customer@storefront.local"
	DemoPassword  = "password123"
)

type seedProduct struct {
	name, description, price string
	stock                    int
	category                 string
	featured                 bool
}

var demoCategories = []models.Category{
	{Name: "Electronics", Description: "Phones, laptops and accessories"},
	{Name: "Books", Description: "Fiction and non-fiction"},
	{Name: "Home", Description: "Kitchen and living"},
}

var demoProducts = []seedProduct{
	{"Smartphone X", "6.1 inch display, 128 GB", "699.00", 25, "Electronics", true},
	{"USB-C Charger", "65 W fast charger", "29.90", 100, "Electronics", false},
	{"The Go Programming Language", "Donovan and Kernighan", "39.99", 40, "Books", true},
	{"Cast Iron Skillet", "26 cm, pre-seasoned", "34.50", 30, "Home", false},
}

// SeedCatalog creates an administrator, a customer, the demo catalog and one
// order placed through the checkout service. Stock of the ordered products
// is decremented here; checkout itself leaves stock alone.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if _, err := seedUser(db, "Store Admin", AdminEmail, models.RoleAdministrator); err != nil {
		return err
	}
	customer, err := seedUser(db, "Demo Customer", CustomerEmail, models.RoleCustomer)
	if err != nil {
		return err
	}

	categories := make(map[string]uint, len(demoCategories))
	for _, c := range demoCategories {
		if err := db.Where(models.Category{Name: c.Name}).Attrs(c).FirstOrCreate(&c).Error; err != nil {
			return err
		}
		categories[c.Name] = c.ID
	}

	products := make([]models.Product, 0, len(demoProducts))
	for _, sp := range demoProducts {
		categoryID := categories[sp.category]
		p := models.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       models.MustMoney(sp.price),
			Stock:       sp.stock,
			CategoryID:  &categoryID,
			Featured:    sp.featured,
		}
		if err := db.Where(models.Product{Name: sp.name}).Attrs(p).FirstOrCreate(&p).Error; err != nil {
			return err
		}
		products = append(products, p)
	}

	var orders int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", customer.ID).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return nil
	}
	return seedOrder(ctx, db, customer, products[0], products[2])
}

func seedUser(db *gorm.DB, name, email, role string) (models.User, error) {
	var u models.User
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return u, err
	}
	err = db.Where(models.User{Email: email}).Attrs(models.User{
		Name:     name,
		Password: hash,
		Phone:    "555-0100",
		Address:  "1 Demo Street",
		Role:     role,
	}).FirstOrCreate(&u).Error
	return u, err
}

func seedOrder(ctx context.Context, db *gorm.DB, customer models.User, lines ...models.Product) error {
	carts := services.NewCartService(db)
	for _, p := range lines {
		if _, err := carts.Add(ctx, customer.ID, p.ID, 1); err != nil {
			return err
		}
	}

	order, err := services.NewCheckoutService(db, nil).Checkout(ctx, customer.ID, services.CheckoutInput{
		ShippingAddress: customer.Address,
		PaymentMethod:   "card",
	})
	if err != nil {
		return err
	}

	for _, it := range order.Items {
		if err := db.Model(&models.Product{}).Where("id = ?", it.ProductID).
			UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
