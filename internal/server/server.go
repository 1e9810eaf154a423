package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/kanban/internal/api/v1"
	"github.com/gosuda/kanban/internal/api/ws"
	"github.com/gosuda/kanban/internal/config"
	"github.com/gosuda/kanban/internal/server/middleware"
)

// AuthService is what the server needs from the auth layer: the REST
// operations plus access token validation for the middleware.
type AuthService interface {
	v1.AuthService
	middleware.SessionValidator
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the background
// sweepers of the rate limiters. metricsHandler and webAssets may be nil;
// when webAssets is set the SPA is served on every unmatched route.
func New(ctx context.Context, cfg *config.Config, boards v1.BoardService, authSvc AuthService, hub *ws.Hub, metricsHandler http.Handler, webAssets fs.FS) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Sign-in and token exchange, limited per client address.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst))

			authConfig := huma.DefaultConfig("Kanban Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			authConfig.OpenAPIPath = "/auth/openapi"
			authConfig.DocsPath = "/auth/docs"
			authConfig.SchemasPath = "/auth/schemas"
			authAPI := humachi.New(r, authConfig)
			registerPublicRoutes(authAPI, authSvc, cfg.Server.PublicURL)
		})

		// Everything else needs a session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))
			r.Use(middleware.RateLimit(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst))

			apiConfig := huma.DefaultConfig("Kanban API", "1.0.0")
			apiConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, boards, authSvc)
		})
	})

	// WebSocket routes. Browsers cannot set headers on a socket, so the
	// auth middleware also accepts ?access_token=.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(authSvc))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	// Must be registered last so API and WS routes take priority.
	if webAssets != nil {
		router.NotFound(spaHandler(webAssets).ServeHTTP)
		log.Info().Msg("embedded web app enabled")
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

// OriginHosts converts CORS origins into the host patterns the WebSocket
// handshake checks against.
func OriginHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			log.Warn().Str("origin", o).Msg("ignoring malformed CORS origin for websockets")
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
