// Package mock serves the Learning Hub REST contract from a Badger store so
// the client toolkit can run without the real backend.
package mock

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/learninghub/learninghub/internal/http/response"
	"github.com/learninghub/learninghub/internal/ratelimit"
	"github.com/learninghub/learninghub/internal/store"
)

// Options configures the mock server.
type Options struct {
	BasePath       string        // API base path (default: /api/v1)
	AdminSecret    string        // Required on writes
	Delay          time.Duration // Artificial latency before every request
	RateLimitRPS   int           // Per-client request rate, 0 disables
	RateLimitBurst int
	AllowedOrigins []string                          // CORS origins (default: localhost on any port)
	Middleware     []func(http.Handler) http.Handler // Appended after the built-in stack
}

func (o *Options) setDefaults() {
	if o.BasePath == "" {
		o.BasePath = "/api/v1"
	}
	o.BasePath = "/" + strings.Trim(o.BasePath, "/")
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if o.RateLimitBurst < 1 {
		o.RateLimitBurst = 1
	}
}

// Server holds dependencies for the mock HTTP handlers.
type Server struct {
	store   *store.Store
	router  *chi.Mux
	api     huma.API
	limiter *ratelimit.KeyedRateLimiter
	opts    Options
	logger  *slog.Logger
}

// NewServer creates a mock server with all routes configured.
func NewServer(st *store.Store, opts Options, logger *slog.Logger) *Server {
	opts.setDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		store:  st,
		router: chi.NewRouter(),
		opts:   opts,
		logger: logger,
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = ratelimit.New(float64(opts.RateLimitRPS), opts.RateLimitBurst)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Learning Hub Mock API", "1.0.0")
	humaConfig.OpenAPIPath = opts.BasePath + "/openapi"
	humaConfig.DocsPath = opts.BasePath + "/docs"
	humaConfig.SchemasPath = opts.BasePath + "/schemas"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"adminSecret": {
			Type: "apiKey",
			In:   "header",
			Name: "AdminSecret",
		},
	}
	registerErrorHandler()
	s.api = humachi.New(s.router, humaConfig)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// BasePath returns the path every route is registered under.
func (s *Server) BasePath() string {
	return s.opts.BasePath
}

// Close releases the rate limiter's background cleanup.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.cors())
	s.router.Use(s.rateLimit)
	s.router.Use(s.delay)
	for _, m := range s.opts.Middleware {
		s.router.Use(m)
	}
}

// setupRoutes configures all HTTP routes. Reads and deletes are huma
// operations; multipart writes are plain chi handlers.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerResourceRoutes()
	s.registerTagRoutes()

	scoped := s.opts.BasePath + "/{product}/resources"
	s.router.With(s.requireProduct, s.requireAdmin).Post(scoped, s.handleCreateResource)
	s.router.With(s.requireProduct, s.requireAdmin).Patch(scoped+"/{id}", s.handleUpdateResource)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
