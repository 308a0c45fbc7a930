package repository

import (
	"context"
	"errors"
	"time"

	"FolioPulse/internal/domain/models"
)

// ErrSymbolNotFound is the authoritative "this symbol does not exist" answer
// from a provider. It advances the fallback chain without a retry.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrNotSupported means a provider does not implement the requested
// capability; the fallback chain advances without counting it as a failure.
var ErrNotSupported = errors.New("operation not supported")

// PriceSource is a single external market-data provider. Implementations
// normalize whatever shape the provider returns into plain prices; transient
// failures come back as ordinary errors, unknown symbols as ErrSymbolNotFound.
type PriceSource interface {
	Name() string
	Current(ctx context.Context, symbol string) (float64, error)
	History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error)
}

// HoldingsStore supplies the investment list for an analytics pass. The
// analytics engine only reads from it; writes happen at the API boundary.
type HoldingsStore interface {
	List(ctx context.Context) ([]models.Investment, error)
	Get(ctx context.Context, id string) (models.Investment, error)
	Add(ctx context.Context, inv models.Investment) (models.Investment, error)
	Replace(ctx context.Context, inv models.Investment) error
	Delete(ctx context.Context, id string) error
}

type Metrics interface {
	RecordProviderCall(provider string)
	RecordProviderError(provider string)
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordFallback(symbol string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
