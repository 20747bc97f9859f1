// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (h *CartController) Remove(c *ctx.Context) {
//	    productID, ok := c.ParamUint("productId")
//	    if !ok {
//	        return
//	    }
//	    if err := h.carts.Remove(c.Context(), c.UserID(), productID); err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Message(http.StatusOK, "Item removed from cart")
//	}
//
//	router.Delete("/carts/remove/{productId}", "carts.remove", ctx.Wrap(h.Remove))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive numeric path parameter. On failure it writes a
// 400 and returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.Fail(apperr.InvalidInput(fmt.Sprintf("invalid %s", key)))
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryInt returns a query-string integer, or def when absent or malformed.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// QueryBool reports whether key is "true" or "1".
func (c *Context) QueryBool(key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		return true
	}
	return false
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns the caller resolved by middleware.Authenticate.
func (c *Context) Identity() (auth.Identity, bool) {
	return auth.FromContext(c.R.Context())
}

// UserID returns the authenticated caller's id, or 0.
func (c *Context) UserID() uint {
	id, _ := c.Identity()
	return id.UserID
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the JSON body into dest. On failure it sends
// a 400 invalid_input envelope (with per-field errors when validation failed)
// and returns false.
//
//	var input AddToCartInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.R, dest); err != nil {
		c.Fail(err)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends a 200 with v as the body.
func (c *Context) Success(v any) { c.JSON(http.StatusOK, v) }

// Created sends a 201 with v as the body.
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

// Message sends {"message": msg}.
func (c *Context) Message(code int, msg string) {
	c.JSON(code, map[string]string{"message": msg})
}

// Paginated sends a page of items with its metadata.
func (c *Context) Paginated(items any, p orm.Pagination) {
	c.status = http.StatusOK
	response.Paginated(c.W, items, p)
}

// Fail renders err as the error envelope. Server-side failures are logged
// with their cause.
func (c *Context) Fail(err error) {
	kind := apperr.KindOf(err)
	code := apperr.Status(kind)
	if code >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"kind", string(kind),
			"path", c.R.URL.Path,
			"error", err,
		)
	}
	c.status = code
	response.Fail(c.W, err)
}

// Unauthorized sends a 401.
func (c *Context) Unauthorized(message string) {
	c.Fail(apperr.Unauthorized(message))
}

// Forbidden sends a 403.
func (c *Context) Forbidden(message string) {
	c.Fail(apperr.Forbidden(message))
}

// NotFound sends a 404.
func (c *Context) NotFound(message string) {
	c.Fail(apperr.NotFound(message))
}

// WrittenStatus returns the status code written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
