package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/service/ratelimit"
	"FolioPulse/internal/service/symbols"
	pkgcache "FolioPulse/pkg/cache"
	applogger "FolioPulse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordProviderCall(string)      {}
func (nopMetrics) RecordProviderError(string)     {}
func (nopMetrics) RecordCacheHit(string)          {}
func (nopMetrics) RecordCacheMiss(string)         {}
func (nopMetrics) RecordFallback(string)          {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)  {}

// stubSource scripts per-call answers and counts invocations.
type stubSource struct {
	name string

	mu           sync.Mutex
	currentCalls int
	historyCalls int
	currentFn    func(call int) (float64, error)
	historyFn    func(call int) ([]models.PricePoint, error)
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Current(_ context.Context, _ string) (float64, error) {
	s.mu.Lock()
	s.currentCalls++
	call := s.currentCalls
	s.mu.Unlock()
	if s.currentFn == nil {
		return 0, drepo.ErrNotSupported
	}
	return s.currentFn(call)
}

func (s *stubSource) History(_ context.Context, _ string, _ time.Time) ([]models.PricePoint, error) {
	s.mu.Lock()
	s.historyCalls++
	call := s.historyCalls
	s.mu.Unlock()
	if s.historyFn == nil {
		return nil, drepo.ErrNotSupported
	}
	return s.historyFn(call)
}

func (s *stubSource) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCalls, s.historyCalls
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func newTestFetcher(t *testing.T, chains map[models.AssetClass][]drepo.PriceSource) (*PriceFetcher, pkgcache.Service) {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	f := NewPriceFetcher(
		symbols.NewResolver(),
		chains,
		mc,
		ratelimit.New(nil),
		nopMetrics{},
		testLogger(t),
		WithRetryWait(time.Millisecond),
		WithCallTimeout(time.Second),
	)
	return f, mc
}

func TestFetchCurrentCachesQuote(t *testing.T) {
	src := &stubSource{
		name:      "stub",
		currentFn: func(int) (float64, error) { return 123.45, nil },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()

	q1, err := f.FetchCurrent(ctx, "AAPL", models.AssetStock)
	require.NoError(t, err)
	require.Equal(t, 123.45, q1.Price)
	require.Equal(t, "stub", q1.Source)
	require.False(t, q1.IsFallback)

	q2, err := f.FetchCurrent(ctx, "AAPL", models.AssetStock)
	require.NoError(t, err)
	require.Equal(t, q1.Price, q2.Price)

	calls, _ := src.calls()
	require.Equal(t, 1, calls, "second fetch should come from cache")
}

func TestFetchCurrentRetriesTransientOnce(t *testing.T) {
	src := &stubSource{
		name: "flaky",
		currentFn: func(call int) (float64, error) {
			if call == 1 {
				return 0, errors.New("connection reset")
			}
			return 99.0, nil
		},
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})

	q, err := f.FetchCurrent(context.Background(), "AAPL", models.AssetStock)
	require.NoError(t, err)
	require.Equal(t, 99.0, q.Price)

	calls, _ := src.calls()
	require.Equal(t, 2, calls)
}

func TestFetchCurrentNoRetryOnSymbolNotFound(t *testing.T) {
	primary := &stubSource{
		name:      "primary",
		currentFn: func(int) (float64, error) { return 0, drepo.ErrSymbolNotFound },
	}
	secondary := &stubSource{
		name:      "secondary",
		currentFn: func(int) (float64, error) { return 55.5, nil },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {primary, secondary},
	})

	q, err := f.FetchCurrent(context.Background(), "XYZ", models.AssetStock)
	require.NoError(t, err)
	require.Equal(t, "secondary", q.Source)
	require.Equal(t, 55.5, q.Price)

	calls, _ := primary.calls()
	require.Equal(t, 1, calls, "not-found answers are authoritative")
}

func TestFetchCurrentAllProvidersFailed(t *testing.T) {
	src := &stubSource{
		name:      "down",
		currentFn: func(int) (float64, error) { return 0, errors.New("503") },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})

	_, err := f.FetchCurrent(context.Background(), "AAPL", models.AssetStock)
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestFetchCurrentEmptyChain(t *testing.T) {
	f, _ := newTestFetcher(t, nil)
	_, err := f.FetchCurrent(context.Background(), "whatever", models.AssetBond)
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestQuoteForFallbackNotCached(t *testing.T) {
	src := &stubSource{
		name:      "down",
		currentFn: func(int) (float64, error) { return 0, errors.New("503") },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()

	inv, err := models.NewInvestment("", models.AssetStock, "Apple", time.Now(), 150, 1500, "")
	require.NoError(t, err)

	q := f.QuoteFor(ctx, inv)
	require.True(t, q.IsFallback)
	require.Equal(t, "none", q.Source)
	require.Equal(t, 150.0, q.Price, "fallback price is the entry price")

	// Fallbacks are not cached, so the next call hits the chain again.
	before, _ := src.calls()
	_ = f.QuoteFor(ctx, inv)
	after, _ := src.calls()
	require.Greater(t, after, before)
}

func TestQuoteForUnresolvableName(t *testing.T) {
	f, _ := newTestFetcher(t, nil)
	inv, err := models.NewInvestment("", models.AssetStock, "some obscure private fund nobody lists", time.Now(), 10, 100, "")
	require.NoError(t, err)

	q := f.QuoteFor(context.Background(), inv)
	require.True(t, q.IsFallback)
	require.Equal(t, 10.0, q.Price)
}

func TestFetchCurrentCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	src := &stubSource{
		name: "slow",
		currentFn: func(int) (float64, error) {
			<-release
			return 77.0, nil
		},
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := f.FetchCurrent(ctx, "AAPL", models.AssetStock)
			if err != nil {
				t.Errorf("fetch: %v", err)
				return
			}
			if q.Price != 77.0 {
				t.Errorf("price = %v", q.Price)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	calls, _ := src.calls()
	require.Equal(t, 1, calls, "concurrent misses must share one provider call")
}

func TestFetchHistoryLazyAndSingleUse(t *testing.T) {
	points := []models.PricePoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 10},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 11},
	}
	src := &stubSource{
		name:      "hist",
		historyFn: func(int) ([]models.PricePoint, error) { return points, nil },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seq := f.FetchHistory(ctx, "AAPL", models.AssetStock, since)

	// Nothing happens until the sequence is pulled.
	_, hist := src.calls()
	require.Equal(t, 0, hist)

	var got []models.PriceQuote
	for q := range seq {
		got = append(got, q)
	}
	require.Len(t, got, 2)
	require.Equal(t, 10.0, got[0].Price)
	require.Equal(t, "hist", got[0].Source)

	// A consumed sequence yields nothing on a second pass.
	count := 0
	for range seq {
		count++
	}
	require.Zero(t, count)
}

func TestFetchHistoryCached(t *testing.T) {
	src := &stubSource{
		name: "hist",
		historyFn: func(int) ([]models.PricePoint, error) {
			return []models.PricePoint{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 10}}, nil
		},
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for q := range f.FetchHistory(ctx, "AAPL", models.AssetStock, since) {
		_ = q
	}
	for q := range f.FetchHistory(ctx, "AAPL", models.AssetStock, since) {
		_ = q
	}

	_, hist := src.calls()
	require.Equal(t, 1, hist, "second series should come from cache")
}

func TestInvalidateForcesRefetch(t *testing.T) {
	src := &stubSource{
		name:      "stub",
		currentFn: func(int) (float64, error) { return 50.0, nil },
	}
	f, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {src},
	})
	ctx := context.Background()

	inv, err := models.NewInvestment("", models.AssetStock, "Apple", time.Now(), 40, 400, "")
	require.NoError(t, err)

	_ = f.QuoteFor(ctx, inv)
	f.Invalidate(ctx, []models.Investment{inv})
	_ = f.QuoteFor(ctx, inv)

	calls, _ := src.calls()
	require.Equal(t, 2, calls)
}
