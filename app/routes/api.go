// Package routes is the route table of the storefront API.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Handlers are the controllers and extra endpoints the table mounts.
// GraphQL and Feed are optional.
type Handlers struct {
	Roles   middleware.RoleLookup
	Users   *controllers.UserController
	Carts   *controllers.CartController
	Orders  *controllers.OrderController
	Catalog *controllers.CatalogController
	GraphQL http.HandlerFunc
	Feed    http.HandlerFunc
}

func RegisterAPI(r *router.Router, h Handlers) {
	authn := middleware.Authenticate(h.Roles, models.RoleBlockedCustomer)
	admin := rbac.HasRole(models.RoleAdministrator)

	api := r.Group("/api")
	signedIn := api.Group("", authn)
	staff := signedIn.Group("", admin)

	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(h.Users.Register))
	users.Post("/login", "users.login", ctx.Wrap(h.Users.Login))
	users.Get("/me", "users.me", ctx.Wrap(h.Users.Me), authn)
	users.Get("/", "users.index", ctx.Wrap(h.Users.Index), authn, admin)
	users.Put("/block/{id}", "users.block", ctx.Wrap(h.Users.ToggleBlock), authn, admin)

	session := api.Group("/auth")
	session.Post("/login", "auth.login", ctx.Wrap(h.Users.Login))
	session.Get("/me", "auth.me", ctx.Wrap(h.Users.Me), authn)

	profile := signedIn.Group("/profile")
	profile.Get("/", "profile.show", ctx.Wrap(h.Users.Me))
	profile.Put("/", "profile.update", ctx.Wrap(h.Users.UpdateProfile))
	profile.Put("/password", "profile.password", ctx.Wrap(h.Users.ChangePassword))

	categories := api.Group("/categories")
	categories.Get("/", "categories.index", ctx.Wrap(h.Catalog.Categories))
	categories.Get("/{id}", "categories.show", ctx.Wrap(h.Catalog.Category))
	categories.Get("/{id}/products", "categories.products", ctx.Wrap(h.Catalog.Related))
	staff.Post("/categories", "categories.store", ctx.Wrap(h.Catalog.CreateCategory))
	staff.Put("/categories/{id}", "categories.update", ctx.Wrap(h.Catalog.UpdateCategory))
	staff.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(h.Catalog.DeleteCategory))

	products := api.Group("/products")
	products.Get("/", "products.index", ctx.Wrap(h.Catalog.Products))
	products.Get("/{id}", "products.show", ctx.Wrap(h.Catalog.Product))
	staff.Post("/products", "products.store", ctx.Wrap(h.Catalog.CreateProduct))
	staff.Put("/products/{id}", "products.update", ctx.Wrap(h.Catalog.UpdateProduct))
	staff.Delete("/products/{id}", "products.destroy", ctx.Wrap(h.Catalog.DeleteProduct))

	carts := signedIn.Group("/carts")
	carts.Get("/", "carts.show", ctx.Wrap(h.Carts.Show))
	carts.Post("/add", "carts.add", ctx.Wrap(h.Carts.Add))
	carts.Put("/update", "carts.update", ctx.Wrap(h.Carts.Update))
	carts.Delete("/remove/{productId}", "carts.remove", ctx.Wrap(h.Carts.Remove))
	carts.Post("/clear", "carts.clear", ctx.Wrap(h.Carts.Clear))

	orders := signedIn.Group("/orders")
	orders.Get("/", "orders.mine", ctx.Wrap(h.Orders.Mine))
	orders.Post("/checkout", "orders.checkout", ctx.Wrap(h.Orders.Checkout))
	orders.Get("/stream", "orders.stream", ctx.Wrap(h.Orders.Stream))
	staff.Get("/orders/all", "orders.all", ctx.Wrap(h.Orders.All))
	staff.Put("/orders/{id}/status", "orders.status", ctx.Wrap(h.Orders.UpdateStatus))

	if h.GraphQL != nil {
		api.Post("/graphql", "graphql", h.GraphQL)
	}
	if h.Feed != nil {
		r.Get("/ws/orders", "ws.orders", h.Feed, authn, admin)
	}
}
