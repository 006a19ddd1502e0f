package mock

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/http/response"
)

const (
	msgInvalidProduct = "Invalid product parameter"
	msgAdminRequired  = "Admin authentication required"
	msgRateLimited    = "Rate limit exceeded"
)

func (s *Server) cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization", domain.AdminSecretHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("mock request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// rateLimit rejects clients above the configured rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(clientIP(r)) {
			s.logger.Warn("Rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
			response.TooManyRequests(w, msgRateLimited, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// delay holds every request for the configured latency, giving up early
// when the client goes away.
func (s *Server) delay(next http.Handler) http.Handler {
	if s.opts.Delay <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.NewTimer(s.opts.Delay)
		defer t.Stop()
		select {
		case <-t.C:
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

// requireProduct rejects unknown product path segments.
func (s *Server) requireProduct(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.Product(chi.URLParam(r, "product")).Valid() {
			response.BadRequest(w, response.CodeInvalidParam, msgInvalidProduct, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin accepts the admin secret from the AdminSecret header, an
// Authorization bearer token or the adminSecret query parameter.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r.Header.Get(domain.AdminSecretHeader), r.Header.Get("Authorization"), r.URL.Query().Get(domain.AdminSecretParam)) {
			response.Unauthorized(w, msgAdminRequired, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// productOp is requireProduct for huma operations.
func (s *Server) productOp(ctx huma.Context, next func(huma.Context)) {
	if !domain.Product(ctx.Param("product")).Valid() {
		writeHumaError(ctx, http.StatusBadRequest, response.CodeInvalidParam, msgInvalidProduct)
		return
	}
	next(ctx)
}

// adminOp is requireAdmin for huma operations.
func (s *Server) adminOp(ctx huma.Context, next func(huma.Context)) {
	if !s.isAdmin(ctx.Header(domain.AdminSecretHeader), ctx.Header("Authorization"), ctx.Query(domain.AdminSecretParam)) {
		writeHumaError(ctx, http.StatusUnauthorized, response.CodeUnauthorized, msgAdminRequired)
		return
	}
	next(ctx)
}

func (s *Server) isAdmin(header, authorization, query string) bool {
	if s.opts.AdminSecret == "" {
		return false
	}
	if scheme, token, ok := strings.Cut(authorization, " "); ok && scheme == "Bearer" {
		if secretEqual(token, s.opts.AdminSecret) {
			return true
		}
	}
	return secretEqual(header, s.opts.AdminSecret) || secretEqual(query, s.opts.AdminSecret)
}

func secretEqual(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
