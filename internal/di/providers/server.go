package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/gateway"
	"github.com/learninghub/learninghub/internal/logger"
	"github.com/learninghub/learninghub/internal/metrics"
	"github.com/learninghub/learninghub/internal/mock"
)

// MockServerHandle wraps the mock handler with shutdown capability.
type MockServerHandle struct {
	*mock.Server
}

// Shutdown implements do.Shutdownable.
func (h *MockServerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideMockServer provides the mock backend handler. It is not listening
// on its own; see ProvideMockHTTPServer and ProvideGateway.
func ProvideMockServer(i do.Injector) (*MockServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	_ = do.MustInvoke[*FixtureReloaderHandle](i)

	s := mock.NewServer(storeHandle.Store, mock.Options{
		BasePath:       cfg.API.BasePath,
		AdminSecret:    cfg.API.AdminSecret,
		Delay:          cfg.Mock.Delay,
		RateLimitRPS:   cfg.Mock.RateLimitRPS,
		RateLimitBurst: cfg.Mock.RateLimitBurst,
		Middleware:     []func(http.Handler) http.Handler{m.Middleware("mock")},
	}, log.Logger)

	return &MockServerHandle{Server: s}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideMockHTTPServer serves the mock backend standalone on MOCK_PORT.
func ProvideMockHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	mockHandle := do.MustInvoke[*MockServerHandle](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Mock.Port,
		Handler:      mockHandle.Server,
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
		IdleTimeout:  cfg.Gateway.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("Mock API starting", "addr", srv.Addr, "base", mockHandle.BasePath())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Mock API error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

// GatewayHandle runs the dev gateway.
type GatewayHandle struct {
	*gateway.Server
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *GatewayHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideGateway starts the dev gateway on PORT. With MOCK_ENABLED the API
// base path is served by the in-process mock, otherwise it is proxied to
// PROXY_API_HOST.
func ProvideGateway(i do.Injector) (*GatewayHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	c := do.MustInvoke[*ClientHandle](i)

	opts := gateway.Options{
		Addr:           ":" + cfg.Gateway.Port,
		BasePath:       cfg.API.BasePath,
		DefaultProduct: cfg.Product(),
		AdminSecret:    cfg.API.AdminSecret,
		ProxyHost:      cfg.Gateway.ProxyHost,
		CacheSize:      cfg.Cache.Size,
		CacheMaxAge:    cfg.Cache.MaxAge,
		ReadTimeout:    cfg.Gateway.ReadTimeout,
		WriteTimeout:   cfg.Gateway.WriteTimeout,
		IdleTimeout:    cfg.Gateway.IdleTimeout,
	}
	if cfg.Mock.Enabled {
		opts.API = do.MustInvoke[*MockServerHandle](i).Server
	}

	gw, err := gateway.NewServer(opts, c.Client, m, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := gw.ListenAndServe(ctx); err != nil {
			log.Error("Gateway error", "error", err)
		}
	}()

	return &GatewayHandle{Server: gw, cancel: cancel, done: done}, nil
}
