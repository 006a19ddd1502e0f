// Package providers contains dependency injection providers for Learning Hub.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/logger"
	"github.com/learninghub/learninghub/internal/metrics"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	})

	log.Debug("Configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"api", cfg.API.URL(),
		"product", cfg.API.Product,
		"mock_enabled", cfg.Mock.Enabled,
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus registry shared by the client,
// the query cache and the servers.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
