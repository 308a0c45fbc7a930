package di

import (
	"fmt"
	"io"
	"time"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/handler/api"
	internalrepo "FolioPulse/internal/repository"
	"FolioPulse/internal/service/providers/coingecko"
	"FolioPulse/internal/service/providers/yahoo"
	"FolioPulse/internal/service/ratelimit"
	"FolioPulse/internal/service/symbols"
	"FolioPulse/internal/usecase"
	pkgcache "FolioPulse/pkg/cache"
	"FolioPulse/pkg/config"
	xhttp "FolioPulse/pkg/http"
	applogger "FolioPulse/pkg/logger"
	"FolioPulse/pkg/metrics"
	"FolioPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideCache selects the cache backend from configuration.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		), nil
	case "redis":
		return pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
	case "layered":
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, err
		}
		return pkgcache.NewLayeredCache(redisCache,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideLimiter configures the per-provider rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(map[string]time.Duration{
		"yahoo-quote": cfg.Providers.Yahoo.MinInterval,
		"yahoo-chart": cfg.Providers.Yahoo.MinInterval,
		"coingecko":   cfg.Providers.CoinGecko.MinInterval,
	})
}

// ProvideResolver creates the symbol resolver.
func ProvideResolver() *symbols.Resolver {
	return symbols.NewResolver()
}

// ProvideChains builds the ordered provider chain per asset class. Classes
// without live sources fall straight through to entry-price quotes.
func ProvideChains(cfg *config.Config) map[models.AssetClass][]drepo.PriceSource {
	return map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {
			yahoo.NewQuoteAPI(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Yahoo.Timeout),
			yahoo.NewChartAPI(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Yahoo.Timeout),
		},
		models.AssetCrypto: {
			coingecko.New(cfg.Providers.CoinGecko.BaseURL, cfg.Providers.CoinGecko.Timeout),
		},
	}
}

// ProvideFetcher creates the price fetcher use case.
func ProvideFetcher(
	resolver *symbols.Resolver,
	chains map[models.AssetClass][]drepo.PriceSource,
	c pkgcache.Service,
	limiter *ratelimit.Limiter,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PriceFetcher {
	opts := []usecase.FetcherOption{}
	if cfg.Providers.RetryWait > 0 {
		opts = append(opts, usecase.WithRetryWait(cfg.Providers.RetryWait))
	}
	return usecase.NewPriceFetcher(resolver, chains, c, limiter, m, l, opts...)
}

// ProvideHoldingsStore creates the file-backed holdings store.
func ProvideHoldingsStore(cfg *config.Config) (*internalrepo.FileHoldingsStore, error) {
	store, err := internalrepo.NewFileHoldingsStore(cfg.Holdings.Path)
	if err != nil {
		return nil, fmt.Errorf("holdings store: %w", err)
	}
	return store, nil
}

// ProvideEngine creates the analytics engine.
func ProvideEngine(store *internalrepo.FileHoldingsStore, fetcher *usecase.PriceFetcher, m drepo.Metrics, l *applogger.Logger) *usecase.AnalyticsEngine {
	return usecase.NewAnalyticsEngine(store, fetcher, m, l)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	engine *usecase.AnalyticsEngine,
	fetcher *usecase.PriceFetcher,
	store *internalrepo.FileHoldingsStore,
) xhttp.Handler {
	return api.NewPortfolioEchoHandler(l, engine, fetcher, store, store)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, c pkgcache.Service) *server.App {
	closer, _ := c.(io.Closer)
	return server.New(cfg, l, handler, closer)
}
