// Package gateway is the development front door: it renders the resource
// list at /{product}/resources and forwards the API base path to a backend
// host or to the in-process mock.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/learninghub/learninghub/internal/client"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/metrics"
	"github.com/learninghub/learninghub/internal/query"
	"github.com/learninghub/learninghub/internal/view"
)

const shutdownTimeout = 10 * time.Second

// Options configures the gateway.
type Options struct {
	Addr           string
	BasePath       string         // API base path (default: /api/v1)
	DefaultProduct domain.Product // Target of the / redirect (default: ecomm)
	AdminSecret    string
	// API serves the base path in-process. When nil, requests are proxied
	// to ProxyHost.
	API          http.Handler
	ProxyHost    string
	CacheSize    int
	CacheMaxAge  time.Duration // Pages older than this are reloaded, 0 disables
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (o *Options) setDefaults() {
	if o.BasePath == "" {
		o.BasePath = "/api/v1"
	}
	o.BasePath = "/" + strings.Trim(o.BasePath, "/")
	if !o.DefaultProduct.Valid() {
		o.DefaultProduct = domain.ProductEcomm
	}
	if o.CacheSize < 1 {
		o.CacheSize = query.DefaultSize
	}
}

// Server is the gateway HTTP server.
type Server struct {
	opts    Options
	router  *chi.Mux
	client  *client.Client
	cache   *query.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
	http    *http.Server
}

// NewServer creates a gateway. c is used to render pages and should point
// at the same API the base path serves. m may be nil.
func NewServer(opts Options, c *client.Client, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	opts.setDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var observer query.Observer
	if m != nil {
		observer = m
	}
	cache, err := query.NewCache(opts.CacheSize, observer, query.WithMaxAge(opts.CacheMaxAge))
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	api := opts.API
	if api == nil {
		if api, err = newProxy(opts.ProxyHost, logger); err != nil {
			return nil, err
		}
	} else {
		api = isolate(api)
	}

	s := &Server{
		opts:    opts,
		router:  chi.NewRouter(),
		client:  c,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes(api)

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Cache returns the query cache used to render pages.
func (s *Server) Cache() *query.Cache {
	return s.cache
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Gateway listening", "addr", ln.Addr().String(), "api", s.opts.BasePath)
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown gateway: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware("gateway"))
	}
}

func (s *Server) setupRoutes(api http.Handler) {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Get("/", s.handleRoot)
	s.router.Get("/{product}/resources", s.handleResources)
	s.router.Handle(s.opts.BasePath+"/*", s.invalidateOnWrite(api))

	s.router.NotFound(s.handleNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+string(s.opts.DefaultProduct)+"/resources", http.StatusFound)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.renderBoundary(w, http.StatusNotFound, view.NewRouteError(http.StatusNotFound))
}

// newProxy forwards to host, keeping the request path.
func newProxy(host string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(host)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy host %q", host)
	}
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("Proxy request failed", "path", r.URL.Path, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = fmt.Fprintf(w, `{"error":"bad_gateway","message":%q}`, "Backend unavailable")
	}
	return proxy, nil
}

// isolate hands h a request without the gateway's routing context, so a
// chi router inside h routes on the full path.
func isolate(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, nil)))
	})
}

// invalidateOnWrite marks cached pages of a product stale after a
// successful write passes through the API base path.
func (s *Server) invalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() >= http.StatusBadRequest {
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, s.opts.BasePath+"/")
		product, _, _ := strings.Cut(rest, "/")
		if p := domain.Product(product); p.Valid() {
			n := s.cache.Invalidate(query.Key{string(p)})
			s.logger.Debug("Invalidated cached pages", "product", p, "entries", n)
		}
	})
}
