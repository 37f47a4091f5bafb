package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"FlatAPI/internal/product"
	"FlatAPI/internal/user"
	"FlatAPI/pkg/kit"
)

const (
	Banner = "RESTful API 서버입니다."

	MsgUnauthorized    = "인증이 필요합니다."
	MsgTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."

	readyTimeout = 2 * time.Second
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Users    user.Store
	Products product.Store
	APIKey   string
	Limiter  *kit.FixedWindowLimiter
}

// NewHandler assembles the public router: rate limiting wraps everything,
// the API key guards /api only.
func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	metrics := setupMiddleware(r, deps, httpDeps, log)

	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	if metrics != nil && httpDeps.MetricsEnabled {
		r.With(kit.MetricsAuth(httpDeps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(httpDeps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/", banner)
	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, log))

	users := &user.Server{Store: deps.Users, Log: log}
	products := &product.Server{Store: deps.Products, Log: log}

	r.Route("/api", func(ar chi.Router) {
		ar.Use(kit.APIKey(kit.HeaderAPIKey, deps.APIKey, MsgUnauthorized))
		ar.Mount("/users", users.Routes())
		ar.Mount("/products", products.Routes())
	})

	return r
}

// setupMiddleware installs the chain in order: request id, recoverer,
// access log, metrics, rate limiter. It returns nil metrics when no registry
// was given.
func setupMiddleware(r *chi.Mux, deps Deps, httpDeps HTTPDeps, log *zap.Logger) *kit.Metrics {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(log))
	r.Use(kit.Logging(log))

	var metrics *kit.Metrics
	if httpDeps.Registry != nil {
		metrics = kit.NewMetrics(httpDeps.Registry)
		r.Use(metrics.Middleware(httpDeps.Service, kit.RoutePatternOrPath))
	}

	if deps.Limiter != nil {
		if metrics != nil {
			deps.Limiter.CountRejections(metrics.RateLimited.WithLabelValues(httpDeps.Service))
		}
		r.Use(deps.Limiter.Middleware)
	}

	return metrics
}

func banner(w http.ResponseWriter, _ *http.Request) {
	kit.WriteText(w, http.StatusOK, Banner)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Users.Ping(ctx); err != nil {
			log.Warn("readyz failed: users", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "users store not ready", nil)
			return
		}

		if err := deps.Products.Ping(ctx); err != nil {
			log.Warn("readyz failed: products", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products store not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
