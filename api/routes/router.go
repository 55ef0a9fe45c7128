package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateoquiroz/bookhaven-backend/api/controllers"
	cartcontrollers "github.com/mateoquiroz/bookhaven-backend/api/controllers/cart"
	"github.com/mateoquiroz/bookhaven-backend/api/middleware"
	"github.com/mateoquiroz/bookhaven-backend/internal/books"
	"github.com/mateoquiroz/bookhaven-backend/internal/cart"
	"github.com/mateoquiroz/bookhaven-backend/pkg/config"
	"github.com/mateoquiroz/bookhaven-backend/pkg/logger"
	"github.com/mateoquiroz/bookhaven-backend/pkg/metrics"
	"github.com/mateoquiroz/bookhaven-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	DB          controllers.ReadyChecker
	Redis       *redis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	CatalogRepo *books.Repository
	CartService cart.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.ReadyChecker{
			"database": deps.DB,
			"redis":    readyOrNil(deps.Redis),
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/v1/books", controllers.CatalogList(deps.CatalogRepo, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemOrNil(deps.Redis), logg))

		r.Get("/ping", controllers.PrivatePing())

		// flat registrations keep the chi route patterns aligned with the
		// idempotency rules
		r.Get("/v1/cart", cartcontrollers.Fetch(deps.CartService, logg))
		r.Delete("/v1/cart", cartcontrollers.Clear(deps.CartService, logg))
		r.Post("/v1/cart/items", cartcontrollers.AddItem(deps.CartService, logg))
		r.Patch("/v1/cart/items", cartcontrollers.UpdateItem(deps.CartService, logg))
		r.Delete("/v1/cart/items/{itemID}", cartcontrollers.RemoveItem(deps.CartService, logg))
	})

	return r
}

func readyOrNil(client *redis.Client) controllers.ReadyChecker {
	if client == nil {
		return nil
	}
	return client
}

func idemOrNil(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
