// Package kernel assembles the HTTP handler: global middleware, system
// endpoints and the API route table.
package kernel

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/controllers"
	catalogql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Deps are the process-wide handles the kernel wires into services.
// Everything but DB is optional.
type Deps struct {
	DB      *gorm.DB
	Cache   cache.Store
	Disk    storage.Disk
	Files   http.Handler
	Events  event.Dispatcher
	Hub     *ws.Hub
	Streams *sse.Broker
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(d Deps) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery guards the rest,
	// and the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", health(d.DB))
	if d.Files != nil {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage", d.Files))
	}

	routes.RegisterAPI(r, handlers(d))
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router }

// Routes lists the registered routes for route:list.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }

func handlers(d Deps) routes.Handlers {
	policy := models.PermissiveTransitions
	if config.OrderStrictTransitions() {
		policy = models.StrictTransitions
	}

	users := services.NewUserService(d.DB)
	catalog := services.NewCatalogService(d.DB, d.Cache, d.Disk)
	checkout := services.NewCheckoutService(d.DB, d.Events)
	orders := services.NewOrderService(d.DB, policy, d.Events)

	h := routes.Handlers{
		Roles:   users.Users(),
		Users:   controllers.NewUserController(users),
		Carts:   controllers.NewCartController(services.NewCartService(d.DB)),
		Orders:  controllers.NewOrderController(checkout, orders, d.Streams),
		Catalog: controllers.NewCatalogController(catalog, d.Disk),
	}

	if schema, err := catalogql.Schema(catalog); err != nil {
		logger.Error("graphql: schema disabled", "error", err)
	} else {
		h.GraphQL = graphql.Handler(schema)
	}
	if d.Hub != nil {
		h.Feed = d.Hub.Handler()
	}
	return h
}

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := database.Ping(db); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
