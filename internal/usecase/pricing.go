package usecase

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/singleflight"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/service/ratelimit"
	"FolioPulse/internal/service/symbols"
	"FolioPulse/pkg/cache"
	xlogger "FolioPulse/pkg/logger"
)

// ErrAllProvidersFailed means every provider in the chain was exhausted.
// Recoverable: callers degrade to an entry-price fallback quote.
var ErrAllProvidersFailed = errors.New("all providers failed")

const (
	// currentQuoteTTL bounds staleness of live prices.
	currentQuoteTTL = 5 * time.Minute
	// historyTTL is zero: a past date's series never changes.
	historyTTL time.Duration = 0
)

// PriceFetcher resolves symbols and walks ordered provider chains with
// rate limiting, caching and graceful degradation. The cache and limiter are
// the only state shared across concurrent fetches.
type PriceFetcher struct {
	resolver *symbols.Resolver
	chains   map[models.AssetClass][]drepo.PriceSource
	cache    cache.Service
	limiter  *ratelimit.Limiter
	metrics  drepo.Metrics
	logger   *xlogger.Logger
	group    singleflight.Group

	callTimeout time.Duration
	retryWait   time.Duration
}

// FetcherOption configures PriceFetcher.
type FetcherOption func(*PriceFetcher)

// WithCallTimeout bounds a single provider call.
func WithCallTimeout(d time.Duration) FetcherOption {
	return func(f *PriceFetcher) { f.callTimeout = d }
}

// WithRetryWait sets the pause before the single transient retry.
func WithRetryWait(d time.Duration) FetcherOption {
	return func(f *PriceFetcher) { f.retryWait = d }
}

func NewPriceFetcher(
	resolver *symbols.Resolver,
	chains map[models.AssetClass][]drepo.PriceSource,
	c cache.Service,
	limiter *ratelimit.Limiter,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	opts ...FetcherOption,
) *PriceFetcher {
	f := &PriceFetcher{
		resolver:    resolver,
		chains:      chains,
		cache:       c,
		limiter:     limiter,
		metrics:     metrics,
		logger:      logger,
		callTimeout: 10 * time.Second,
		retryWait:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func currentKey(class models.AssetClass, symbol string) string {
	return cache.GenerateKeyWithParams("quote:current", class, symbol)
}

func historyKey(class models.AssetClass, symbol string, since time.Time) string {
	return cache.GenerateKeyWithParams("quote:history", class, symbol, since.Format("2006-01-02"))
}

// Resolve maps an investment's display name to a provider symbol, preferring
// an already-resolved symbol on the record.
func (f *PriceFetcher) Resolve(inv models.Investment) (string, error) {
	if inv.ResolvedSymbol != "" {
		return inv.ResolvedSymbol, nil
	}
	return f.resolver.Resolve(inv.DisplayName, inv.AssetClass)
}

// QuoteFor produces the quote for one holding, absorbing every failure mode
// into an entry-price fallback. It never returns an error.
func (f *PriceFetcher) QuoteFor(ctx context.Context, inv models.Investment) models.PriceQuote {
	symbol, err := f.Resolve(inv)
	if err == nil {
		quote, ferr := f.FetchCurrent(ctx, symbol, inv.AssetClass)
		if ferr == nil {
			return quote
		}
		f.logger.Warn("live quote unavailable, using entry price",
			xlogger.String("symbol", symbol), xlogger.Error(ferr))
	}
	f.metrics.RecordFallback(inv.DisplayName)
	return models.PriceQuote{
		Symbol:     symbol,
		AssetClass: inv.AssetClass,
		Price:      inv.EntryPrice,
		AsOf:       time.Now(),
		Source:     "none",
		IsFallback: true,
	}
}

// FetchCurrent returns the live price for (symbol, class). Cache hits return
// without touching the limiter or the network; concurrent misses for one key
// collapse into a single in-flight chain walk. Fallback quotes are never
// cached, so the next call retries live sources.
func (f *PriceFetcher) FetchCurrent(ctx context.Context, symbol string, class models.AssetClass) (models.PriceQuote, error) {
	key := currentKey(class, symbol)

	var cached models.PriceQuote
	if err := f.cache.Get(ctx, key, &cached); err == nil {
		f.metrics.RecordCacheHit("current")
		return cached, nil
	}
	f.metrics.RecordCacheMiss("current")

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		// Another waiter may have populated the cache while we queued.
		var q models.PriceQuote
		if err := f.cache.Get(ctx, key, &q); err == nil {
			return q, nil
		}

		quote, err := f.walkChain(ctx, symbol, class)
		if err != nil {
			return models.PriceQuote{}, err
		}
		if err := f.cache.Set(ctx, key, quote, currentQuoteTTL); err != nil {
			f.logger.Warn("quote cache store failed", xlogger.Error(err))
		}
		return quote, nil
	})
	if err != nil {
		return models.PriceQuote{}, err
	}
	return v.(models.PriceQuote), nil
}

// FetchHistory returns a lazy sequence of historical quotes ascending by
// date. Providers are not contacted until the first pull; the sequence is
// single-use and restarts only by calling FetchHistory again. Completed
// series are cached without expiry: history for a fixed past date is
// immutable.
func (f *PriceFetcher) FetchHistory(ctx context.Context, symbol string, class models.AssetClass, since time.Time) iter.Seq[models.PriceQuote] {
	var consumed atomic.Bool
	return func(yield func(models.PriceQuote) bool) {
		if consumed.Swap(true) {
			return
		}
		points, source, err := f.historySeries(ctx, symbol, class, since)
		if err != nil {
			f.logger.Warn("history unavailable",
				xlogger.String("symbol", symbol), xlogger.Error(err))
			return
		}
		for _, p := range points {
			quote := models.PriceQuote{
				Symbol:     symbol,
				AssetClass: class,
				Price:      p.Price,
				AsOf:       p.Date,
				Source:     source,
			}
			if !yield(quote) {
				return
			}
		}
	}
}

type historyEntry struct {
	Source string              `json:"source"`
	Points []models.PricePoint `json:"points"`
}

func (f *PriceFetcher) historySeries(ctx context.Context, symbol string, class models.AssetClass, since time.Time) ([]models.PricePoint, string, error) {
	key := historyKey(class, symbol, since)

	var cached historyEntry
	if err := f.cache.Get(ctx, key, &cached); err == nil {
		f.metrics.RecordCacheHit("history")
		return cached.Points, cached.Source, nil
	}
	f.metrics.RecordCacheMiss("history")

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		var entry historyEntry
		if err := f.cache.Get(ctx, key, &entry); err == nil {
			return entry, nil
		}

		for _, src := range f.chains[class] {
			points, err := f.callHistory(ctx, src, symbol, since)
			if errors.Is(err, drepo.ErrNotSupported) {
				continue
			}
			if err != nil {
				f.logger.Warn("history provider failed",
					xlogger.String("provider", src.Name()), xlogger.Error(err))
				continue
			}
			entry = historyEntry{Source: src.Name(), Points: points}
			if err := f.cache.Set(ctx, key, entry, historyTTL); err != nil {
				f.logger.Warn("history cache store failed", xlogger.Error(err))
			}
			return entry, nil
		}
		return historyEntry{}, ErrAllProvidersFailed
	})
	if err != nil {
		return nil, "", err
	}
	entry := v.(historyEntry)
	return entry.Points, entry.Source, nil
}

// walkChain tries each provider in order until one returns a valid price.
func (f *PriceFetcher) walkChain(ctx context.Context, symbol string, class models.AssetClass) (models.PriceQuote, error) {
	chain := f.chains[class]
	if len(chain) == 0 {
		return models.PriceQuote{}, ErrAllProvidersFailed
	}

	for _, src := range chain {
		price, err := f.callCurrent(ctx, src, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return models.PriceQuote{}, ctx.Err()
			}
			f.metrics.RecordProviderError(src.Name())
			f.logger.Warn("provider failed, advancing chain",
				xlogger.String("provider", src.Name()),
				xlogger.String("symbol", symbol),
				xlogger.Error(err))
			continue
		}
		f.metrics.RecordLastPrice(symbol, price)
		return models.PriceQuote{
			Symbol:     symbol,
			AssetClass: class,
			Price:      price,
			AsOf:       time.Now(),
			Source:     src.Name(),
		}, nil
	}
	return models.PriceQuote{}, ErrAllProvidersFailed
}

// callCurrent performs one rate-limited provider call with a bounded timeout
// and a single retry on transient failure. A symbol-not-found answer is
// authoritative and never retried.
func (f *PriceFetcher) callCurrent(ctx context.Context, src drepo.PriceSource, symbol string) (float64, error) {
	op := func() (float64, error) {
		if err := f.limiter.Wait(ctx, src.Name()); err != nil {
			return 0, backoff.Permanent(err)
		}
		f.metrics.RecordProviderCall(src.Name())

		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
		price, err := src.Current(callCtx, symbol)
		f.metrics.RecordLatency("provider_call", time.Since(start).Seconds())

		if errors.Is(err, drepo.ErrSymbolNotFound) {
			return 0, backoff.Permanent(err)
		}
		return price, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(f.retryWait)),
		backoff.WithMaxTries(2),
	)
}

func (f *PriceFetcher) callHistory(ctx context.Context, src drepo.PriceSource, symbol string, since time.Time) ([]models.PricePoint, error) {
	op := func() ([]models.PricePoint, error) {
		if err := f.limiter.Wait(ctx, src.Name()); err != nil {
			return nil, backoff.Permanent(err)
		}
		f.metrics.RecordProviderCall(src.Name())

		callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
		points, err := src.History(callCtx, symbol, since)
		if errors.Is(err, drepo.ErrSymbolNotFound) || errors.Is(err, drepo.ErrNotSupported) {
			return nil, backoff.Permanent(err)
		}
		return points, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(f.retryWait)),
		backoff.WithMaxTries(2),
	)
}

// Invalidate force-bypasses cached current quotes for the given holdings so
// the next fetch goes back to live sources.
func (f *PriceFetcher) Invalidate(ctx context.Context, investments []models.Investment) {
	for _, inv := range investments {
		symbol, err := f.Resolve(inv)
		if err != nil {
			continue
		}
		if err := f.cache.Delete(ctx, currentKey(inv.AssetClass, symbol)); err != nil {
			f.logger.Warn("cache invalidation failed",
				xlogger.String("symbol", symbol), xlogger.Error(err))
		}
	}
}
