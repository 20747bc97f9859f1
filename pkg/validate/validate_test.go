package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"required"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret1",
		Phone:    "555-0100",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Equal(t, "The phone field is required.", errs["phone"])
}

func TestEmailAndLength(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "a", Email: "nope", Password: "123", Phone: "1"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
}

func TestQuantityBounds(t *testing.T) {
	type in struct {
		ProductID uint `json:"productId" validate:"required"`
		Quantity  int  `json:"quantity"  validate:"gte=1"`
	}
	assert.Contains(t, validate.Struct(in{ProductID: 1, Quantity: 0}), "quantity")
	assert.Contains(t, validate.Struct(in{ProductID: 1, Quantity: -3}), "quantity")
	assert.Empty(t, validate.Struct(in{ProductID: 1, Quantity: 2}))
	assert.Contains(t, validate.Struct(in{Quantity: 2}), "productId")
}

func TestDecimalRules(t *testing.T) {
	type in struct {
		Price decimal.Decimal `json:"price" validate:"required,gt=0"`
		Stock int             `json:"stock" validate:"gte=0"`
	}
	assert.Contains(t, validate.Struct(in{}), "price")
	assert.Contains(t, validate.Struct(in{Price: decimal.RequireFromString("-1.00")}), "price")
	assert.Contains(t, validate.Struct(in{Price: decimal.RequireFromString("9.99"), Stock: -1}), "stock")
	assert.Empty(t, validate.Struct(in{Price: decimal.RequireFromString("0.01")}))
}

func TestInRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=pending,shipped,delivered,cancelled"`
	}
	assert.Equal(t, "The selected status is invalid.", validate.Struct(in{Status: "lost"})["status"])
	assert.Empty(t, validate.Struct(in{Status: "shipped"}))
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"nullable,url"`
		Parent  *uint  `json:"parent"  validate:"nullable,gte=1"`
	}
	assert.Empty(t, validate.Struct(in{}))
	assert.Contains(t, validate.Struct(in{Website: "not-a-url"}), "website")

	zero := uint(0)
	assert.Contains(t, validate.Struct(in{Parent: &zero}), "parent")
}
