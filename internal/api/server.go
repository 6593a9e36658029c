package api

import (
	"encoding/json"
	"net/http"

	"github.com/sindrigils/restfulapi-anime/internal/auth"
	"github.com/sindrigils/restfulapi-anime/internal/catalog"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
	"github.com/sindrigils/restfulapi-anime/internal/metrics"
	"github.com/sindrigils/restfulapi-anime/internal/observability"
	"github.com/sindrigils/restfulapi-anime/internal/ratelimit"
)

// publicPaths skip both authentication and rate limiting.
var publicPaths = []string{"/health", "/metrics", "/auth/*"}

// ServerConfig contains dependencies for the HTTP server.
type ServerConfig struct {
	Catalog *catalog.Service
	Users   UserStore
	Issuer  *auth.TokenIssuer
	Limiter *ratelimit.Limiter // nil disables rate limiting
}

// NewHandler assembles the route table and middleware chain:
// tracing → rate limiting → authentication → handlers.
func NewHandler(cfg ServerConfig) http.Handler {
	mux := http.NewServeMux()

	animeHandler := &Handler{Catalog: cfg.Catalog}
	animeHandler.RegisterRoutes(mux)

	authHandler := &AuthHandler{Users: cfg.Users, Issuer: cfg.Issuer}
	authHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Global().Handler())

	// Wrap inside out: auth must run before the limiter so the bucket is
	// keyed by identity rather than IP for authenticated calls.
	var handler http.Handler = mux
	if cfg.Limiter != nil {
		handler = ratelimit.Middleware(cfg.Limiter, publicPaths)(handler)
		logging.Op().Info("rate limiting enabled")
	}
	handler = auth.Middleware(cfg.Issuer, publicPaths)(handler)
	handler = metrics.Global().HTTPMiddleware(handler)
	handler = observability.HTTPMiddleware(handler)

	return handler
}

// StartHTTPServer starts serving in the background and returns the server
// for shutdown.
func StartHTTPServer(addr string, cfg ServerConfig) *http.Server {
	server := &http.Server{
		Addr:    addr,
		Handler: NewHandler(cfg),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Op().Error("HTTP server error", "error", err)
		}
	}()

	return server
}
