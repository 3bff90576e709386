package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Weilei424/leafwheels-sub000/api/controllers"
	"github.com/Weilei424/leafwheels-sub000/api/middleware"
	"github.com/Weilei424/leafwheels-sub000/internal/cart"
	"github.com/Weilei424/leafwheels-sub000/internal/catalog"
	"github.com/Weilei424/leafwheels-sub000/internal/orders"
	"github.com/Weilei424/leafwheels-sub000/internal/payments"
	"github.com/Weilei424/leafwheels-sub000/pkg/config"
	"github.com/Weilei424/leafwheels-sub000/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisPinger    controllers.Pinger
	CatalogService catalog.Service
	CartService    cart.Service
	OrderService   orders.Service
	PaymentService payments.Service
	Registry       *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(deps.CatalogService, logg))
			r.Post("/", controllers.VehicleCreate(deps.CatalogService, logg))
			r.Get("/{vehicleId}", controllers.VehicleDetail(deps.CatalogService, logg))
			r.Patch("/{vehicleId}/status", controllers.VehicleSetStatus(deps.CatalogService, logg))
		})
		r.Route("/accessories", func(r chi.Router) {
			r.Get("/", controllers.AccessoryList(deps.CatalogService, logg))
			r.Post("/", controllers.AccessoryCreate(deps.CatalogService, logg))
			r.Get("/{accessoryId}", controllers.AccessoryDetail(deps.CatalogService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.UserContext(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.OrderService, logg))
				r.Post("/", controllers.OrderCreate(deps.OrderService, logg))
				r.Post("/from-cart", controllers.OrderCreateFromCart(deps.OrderService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
				r.Get("/{orderId}/payment", controllers.PaymentByOrder(deps.PaymentService, logg))
				r.Post("/{orderId}/refund", controllers.PaymentRefund(deps.PaymentService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/begin", controllers.CheckoutBegin(deps.PaymentService, logg))
				r.Post("/commit", controllers.CheckoutCommit(deps.PaymentService, logg))
				r.Post("/cancel", controllers.CheckoutCancel(deps.PaymentService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.PaymentList(deps.PaymentService, logg))
			})
		})
	})

	return r
}
