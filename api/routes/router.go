package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitlshop/storefront-backend/api/controllers"
	"github.com/capitlshop/storefront-backend/api/middleware"
	authsvc "github.com/capitlshop/storefront-backend/internal/auth"
	cartsvc "github.com/capitlshop/storefront-backend/internal/cart"
	"github.com/capitlshop/storefront-backend/internal/catalog"
	"github.com/capitlshop/storefront-backend/internal/checkout"
	"github.com/capitlshop/storefront-backend/internal/notifications"
	"github.com/capitlshop/storefront-backend/pkg/config"
	"github.com/capitlshop/storefront-backend/pkg/logger"
	"github.com/capitlshop/storefront-backend/pkg/metrics"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Metrics       *metrics.HTTPMetrics
	MetricsHandle http.Handler
	DBPinger      controllers.Pinger
	CachePinger   controllers.Pinger

	AuthService          authsvc.Service
	CatalogService       catalog.Service
	CartService          cartsvc.Service
	CheckoutManager      *checkout.Manager
	NotificationsService notifications.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.CachePinger))
	})

	if deps.MetricsHandle != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandle)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.AuthService, deps.Logger))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, deps.Logger))
		})

		r.Get("/categories", controllers.ListCategories(deps.CatalogService, deps.Logger))
		r.Get("/categories/{categoryId}/products", controllers.ListCategoryProducts(deps.CatalogService, deps.Logger))
		r.Get("/products/{productId}", controllers.GetProduct(deps.CatalogService, deps.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Config.JWT, deps.Logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(deps.CartService, deps.Logger))
				r.Post("/items", controllers.CartAddItem(deps.CartService, deps.Logger))
				r.Patch("/items/{productId}/decrement", controllers.CartDecrementItem(deps.CartService, deps.Logger))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, deps.Logger))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutState(deps.CheckoutManager, deps.Logger))
				r.Post("/", controllers.CheckoutBegin(deps.CheckoutManager, deps.Logger))
				r.Post("/details", controllers.CheckoutSubmitDetails(deps.CheckoutManager, deps.Logger))
				r.Post("/payment-method", controllers.CheckoutSelectPaymentMethod(deps.CheckoutManager, deps.Logger))
				r.Post("/payment", controllers.CheckoutSubmitPayment(deps.CheckoutManager, deps.Logger))
				r.Post("/back", controllers.CheckoutBack(deps.CheckoutManager, deps.Logger))
				r.Post("/complete", controllers.CheckoutComplete(deps.CheckoutManager, deps.Logger))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.NotificationsService, deps.Logger))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationsService, deps.Logger))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, deps.Logger))
			})
		})
	})

	return r
}
