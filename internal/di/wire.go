//go:build wireinject
// +build wireinject

package di

import (
	"FolioPulse/pkg/config"
	"FolioPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideLimiter,

		// Symbol resolution and provider chains
		ProvideResolver,
		ProvideChains,

		// Repositories
		ProvideHoldingsStore,

		// Use cases
		ProvideFetcher,
		ProvideEngine,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
