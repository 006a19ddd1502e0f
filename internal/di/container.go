// Package di provides dependency injection configuration for Learning Hub.
package di

import (
	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/di/providers"
	"github.com/learninghub/learninghub/internal/logger"
	"github.com/learninghub/learninghub/internal/service"
)

// NewContainer creates the DI container with all providers. Everything is
// lazy: a command only builds the services it invokes.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Mock backend
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideFixtureReloader)
	do.Provide(injector, providers.ProvideMockServer)
	do.Provide(injector, providers.ProvideMockHTTPServer)

	// Client side
	do.Provide(injector, providers.ProvideClient)
	do.Provide(injector, providers.ProvideQueryCache)
	do.Provide(injector, providers.ProvideFlashCenter)
	do.Provide(injector, providers.ProvideResourceService)
	do.Provide(injector, providers.ProvideValidator)

	// Server
	do.Provide(injector, providers.ProvideGateway)

	return injector
}

// StartGateway starts the dev gateway and, with the mock enabled, the
// store behind it.
func StartGateway(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.GatewayHandle](injector)
	return err
}

// StartMock starts the standalone mock backend.
func StartMock(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

// Resources returns the hooks of the configured product.
func Resources(injector *do.RootScope) (*service.ResourceService, error) {
	return do.Invoke[*service.ResourceService](injector)
}
