package controllers

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

const streamHeartbeat = 25 * time.Second

type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
	streams  *sse.Broker
}

// NewOrderController serves the order stream only when streams is non-nil.
func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService, streams *sse.Broker) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, streams: streams}
}

func (h *OrderController) Checkout(c *ctx.Context) {
	var in services.CheckoutInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := h.checkout.Checkout(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"message": "Order placed", "order": order})
}

func (h *OrderController) Mine(c *ctx.Context) {
	orders, err := h.orders.ListForUser(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (h *OrderController) All(c *ctx.Context) {
	orders, err := h.orders.ListAll(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (h *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Stream pushes the caller's order events as Server-Sent Events.
func (h *OrderController) Stream(c *ctx.Context) {
	if h.streams == nil {
		c.NotFound("Order stream is not enabled")
		return
	}
	if err := h.streams.Serve(c.W, c.R, c.UserID(), streamHeartbeat); err != nil {
		logger.WithCtx(c.Context()).Warn("order stream closed", "error", err)
	}
}
