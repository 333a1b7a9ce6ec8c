package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vendorverse-backend/api/controllers"
	"github.com/angelmondragon/vendorverse-backend/api/middleware"
	"github.com/angelmondragon/vendorverse-backend/internal/auth"
	"github.com/angelmondragon/vendorverse-backend/internal/catalog"
	"github.com/angelmondragon/vendorverse-backend/internal/checkout"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/vendorverse-backend/pkg/redis"
)

type catalogSource interface {
	Snapshot() catalog.Snapshot
}

// redisStore covers what the rate limiter and idempotency middleware need.
type redisStore interface {
	controllers.Pinger
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       redisStore
	Sessions    session.AccessSessionChecker
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Auth        auth.Service
	Catalog     catalogSource
	Views       controllers.Viewer
	Cart        controllers.CartService
	Checkout    checkout.Service
	Onboarding  controllers.OnboardingGate
	Products    products.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis, d.Catalog))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.SignUpRateLimitPolicy(cfg.AuthRateLimit), d.Redis, logg)).Post("/signup", controllers.AuthSignUp(d.Auth, logg))
		r.With(middleware.AuthRateLimit(middleware.SignInRateLimitPolicy(cfg.AuthRateLimit), d.Redis, logg)).Post("/signin", controllers.AuthSignIn(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Get("/me", controllers.AuthMe(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleVendor, logg))

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", controllers.CatalogList(d.Catalog, logg))
				r.Get("/status", controllers.CatalogStatus(d.Catalog, logg))
				r.Get("/stream", controllers.CatalogStream(d.Views, cfg.Catalog.StreamKeepAlive, logg))
				r.Post("/views/{viewId}/query", controllers.CatalogViewQuery(d.Views, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(d.Cart, logg))
				r.Delete("/", controllers.CartClear(d.Cart, logg))
				r.Post("/items", controllers.CartAddItem(d.Cart, logg))
				r.Patch("/items/{index}", controllers.CartUpdateItem(d.Cart, logg))
				r.Delete("/items/{index}", controllers.CartRemoveItem(d.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/product", controllers.CheckoutProduct(d.Checkout, logg))
				r.Get("/cart", controllers.CheckoutCartPreview(d.Checkout, logg))
				r.Post("/cart", controllers.CheckoutCartConfirm(d.Checkout, logg))
			})
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleSupplier, logg))

			r.Get("/dashboard", controllers.SupplierDashboard(d.Onboarding, logg))
			r.Post("/store", controllers.SupplierCreateStore(d.Onboarding, logg))
			r.Post("/profile", controllers.SupplierCreateProfile(d.Onboarding, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.SupplierListProducts(d.Products, logg))
				r.Post("/", controllers.SupplierCreateProduct(d.Products, logg))
				r.Put("/{productId}", controllers.SupplierUpdateProduct(d.Products, logg))
				r.Delete("/{productId}", controllers.SupplierDeleteProduct(d.Products, logg))
			})
		})
	})

	return r
}
