package providers

import (
	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/client"
	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/flash"
	"github.com/learninghub/learninghub/internal/logger"
	"github.com/learninghub/learninghub/internal/metrics"
	"github.com/learninghub/learninghub/internal/query"
	"github.com/learninghub/learninghub/internal/service"
	"github.com/learninghub/learninghub/internal/validation"
)

// ClientHandle wraps the API client with shutdown capability.
type ClientHandle struct {
	*client.Client
}

// Shutdown implements do.Shutdownable.
func (h *ClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideClient provides the Learning Hub API client.
func ProvideClient(i do.Injector) (*ClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	c := client.New(client.Options{
		BaseURL:   cfg.API.URL(),
		Timeout:   cfg.API.Timeout,
		RateLimit: float64(cfg.API.RateLimitRPS),
		Burst:     cfg.API.RateLimitBurst,
		Logger:    log.Logger,
		Observer:  m,
	})
	return &ClientHandle{Client: c}, nil
}

// ProvideQueryCache provides the query cache, reporting to metrics.
func ProvideQueryCache(i do.Injector) (*query.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	return query.NewCache(cfg.Cache.Size, m, query.WithMaxAge(cfg.Cache.MaxAge))
}

// ProvideFlashCenter provides the notification center. Every notification
// is counted in metrics.
func ProvideFlashCenter(i do.Injector) (*flash.Center, error) {
	m := do.MustInvoke[*metrics.Metrics](i)

	center := flash.NewCenter()
	center.Subscribe(m.Flash)
	return center, nil
}

// ProvideResourceService provides the hooks for the configured product.
func ProvideResourceService(i do.Injector) (*service.ResourceService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	c := do.MustInvoke[*ClientHandle](i)
	cache := do.MustInvoke[*query.Cache](i)
	center := do.MustInvoke[*flash.Center](i)

	return service.NewResourceService(c.Client, cache, center, cfg.Product(), cfg.API.AdminSecret, log.Logger), nil
}

// ProvideValidator provides the form validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
