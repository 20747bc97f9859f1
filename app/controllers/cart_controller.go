// Package controllers holds the HTTP handlers. Each handler decodes the
// request, calls one service operation and renders its result.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// CartLineInput is the body of add and update.
type CartLineInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func (h *CartController) Add(c *ctx.Context) {
	var in CartLineInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := h.carts.Add(c.Context(), c.UserID(), in.ProductID, in.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"message": "Product added to cart", "cartItem": res.Item})
}

func (h *CartController) Update(c *ctx.Context) {
	var in CartLineInput
	if !c.BindJSON(&in) {
		return
	}
	item, err := h.carts.UpdateQuantity(c.Context(), c.UserID(), in.ProductID, in.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"message": "Quantity updated", "cartItem": item})
}

func (h *CartController) Remove(c *ctx.Context) {
	productID, ok := c.ParamUint("productId")
	if !ok {
		return
	}
	if err := h.carts.Remove(c.Context(), c.UserID(), productID); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product removed from cart")
}

// Clear reports 404 when the caller never had a cart.
func (h *CartController) Clear(c *ctx.Context) {
	res, err := h.carts.Clear(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	if !res.CartFound {
		c.NotFound("Cart not found")
		return
	}
	c.Message(http.StatusOK, "Cart cleared")
}

func (h *CartController) Show(c *ctx.Context) {
	view, err := h.carts.View(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}
