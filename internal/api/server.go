package api

import (
	"net/http"
	"time"

	assessmentapi "github.com/futig/mitr-backend/internal/api/assessment"
	authapi "github.com/futig/mitr-backend/internal/api/auth"
	chatapi "github.com/futig/mitr-backend/internal/api/chat"
	"github.com/futig/mitr-backend/internal/api/docs"
	"github.com/futig/mitr-backend/internal/api/middleware"
	resourcesapi "github.com/futig/mitr-backend/internal/api/resources"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Assessment *assessmentapi.Handler
	Chat       *chatapi.Handler
	Resources  *resourcesapi.Handler
	Auth       *authapi.Handler
}

type RouterConfig struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
	Users          middleware.UserResolver
	Gatherer       prometheus.Gatherer
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                   // Recover from panics
	r.Use(chimiddleware.RequestID)                   // Add request ID
	r.Use(middleware.Logger(logger))                 // Log requests
	r.Use(middleware.CORS(cfg.AllowedOrigin))        // Handle CORS
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Users))

		assessmentapi.RegisterRoutes(r, h.Assessment)
		chatapi.RegisterRoutes(r, h.Chat)
		resourcesapi.RegisterRoutes(r, h.Resources)
		authapi.RegisterRoutes(r, h.Auth)
	})

	return r
}
