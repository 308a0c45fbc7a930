package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
)

type memStore struct {
	list []models.Investment
}

func (s *memStore) List(context.Context) ([]models.Investment, error) { return s.list, nil }
func (s *memStore) Get(context.Context, string) (models.Investment, error) {
	return models.Investment{}, nil
}
func (s *memStore) Add(_ context.Context, inv models.Investment) (models.Investment, error) {
	s.list = append(s.list, inv)
	return inv, nil
}
func (s *memStore) Replace(context.Context, models.Investment) error { return nil }
func (s *memStore) Delete(context.Context, string) error             { return nil }

func mustInvestment(t *testing.T, class models.AssetClass, name string, entryDate time.Time, entryPrice, amount float64) models.Investment {
	t.Helper()
	inv, err := models.NewInvestment("", class, name, entryDate, entryPrice, amount, "")
	require.NoError(t, err)
	return inv
}

func liveQuote(symbol string, class models.AssetClass, price float64) models.PriceQuote {
	return models.PriceQuote{Symbol: symbol, AssetClass: class, Price: price, AsOf: time.Now(), Source: "test"}
}

func TestSnapshotSingleHolding(t *testing.T) {
	now := time.Now()
	inv := mustInvestment(t, models.AssetCrypto, "Bitcoin", now.AddDate(-1, 0, 0), 20000, 2000)
	quote := liveQuote("bitcoin", models.AssetCrypto, 40000)

	snap := Snapshot([]models.Investment{inv}, []models.PriceQuote{quote}, now)

	require.Len(t, snap.Holdings, 1)
	h := snap.Holdings[0]
	require.InDelta(t, 0.1, h.Quantity, 1e-12)
	require.InDelta(t, 4000, h.CurrentValue, 1e-9)
	require.InDelta(t, 2000, h.PnLAbs, 1e-9)
	require.InDelta(t, 1.0, h.PnLPct, 1e-9)
	require.True(t, h.AnnualizedValid)
	// One year of holding doubles: annualized is ~100%.
	require.InDelta(t, 1.0, h.Annualized, 0.02)

	require.InDelta(t, 2000, snap.TotalInvested, 1e-9)
	require.InDelta(t, 4000, snap.TotalCurrentValue, 1e-9)
	require.InDelta(t, 1.0, snap.TotalPnLPct, 1e-9)
	require.InDelta(t, 1.0, snap.WinRate, 1e-9)
	require.InDelta(t, 1.0, snap.Concentration, 1e-9, "single holding is fully concentrated")
	require.InDelta(t, 1.0, snap.Allocation[models.AssetCrypto], 1e-9)
	require.Zero(t, snap.FallbackCount)
}

func TestSnapshotAggregates(t *testing.T) {
	now := time.Now()
	entry := now.AddDate(0, -6, 0)
	investments := []models.Investment{
		mustInvestment(t, models.AssetStock, "Apple", entry, 100, 1000),
		mustInvestment(t, models.AssetStock, "Tesla", entry, 200, 1000),
		mustInvestment(t, models.AssetCrypto, "Bitcoin", entry, 20000, 2000),
	}
	quotes := []models.PriceQuote{
		liveQuote("AAPL", models.AssetStock, 110),   // +10%
		liveQuote("TSLA", models.AssetStock, 180),   // -10%
		liveQuote("bitcoin", models.AssetCrypto, 25000), // +25%
	}

	snap := Snapshot(investments, quotes, now)

	require.InDelta(t, 4000, snap.TotalInvested, 1e-9)
	require.InDelta(t, 1100+900+2500, snap.TotalCurrentValue, 1e-9)
	require.InDelta(t, snap.TotalCurrentValue-snap.TotalInvested, snap.TotalPnLAbs, 1e-9)
	require.InDelta(t, 2.0/3.0, snap.WinRate, 1e-9)

	// Allocation shares sum to one.
	var sum float64
	for _, share := range snap.Allocation {
		sum += share
	}
	require.InDelta(t, 1.0, sum, 1e-9)
	require.InDelta(t, 2000.0/4500.0, snap.Allocation[models.AssetStock], 1e-9)

	require.NotNil(t, snap.BestPerformer)
	require.Equal(t, "Bitcoin", snap.BestPerformer.DisplayName)
	require.NotNil(t, snap.WorstPerformer)
	require.Equal(t, "Tesla", snap.WorstPerformer.DisplayName)
}

func TestSnapshotConcentrationEqualWeights(t *testing.T) {
	now := time.Now()
	entry := now.AddDate(0, -1, 0)
	var investments []models.Investment
	var quotes []models.PriceQuote
	for _, name := range []string{"Apple", "Tesla", "Nvidia", "Amazon"} {
		investments = append(investments, mustInvestment(t, models.AssetStock, name, entry, 100, 1000))
		quotes = append(quotes, liveQuote(name, models.AssetStock, 100))
	}

	snap := Snapshot(investments, quotes, now)
	require.InDelta(t, 0.25, snap.Concentration, 1e-9, "four equal holdings give 1/4")
}

func TestSnapshotEmpty(t *testing.T) {
	snap := Snapshot(nil, nil, time.Now())
	require.Empty(t, snap.Holdings)
	require.Zero(t, snap.TotalInvested)
	require.Zero(t, snap.WinRate)
	require.Zero(t, snap.Concentration)
	require.Nil(t, snap.BestPerformer)
	require.Nil(t, snap.WorstPerformer)
}

func TestSnapshotFallbackCounting(t *testing.T) {
	now := time.Now()
	entry := now.AddDate(0, -1, 0)
	investments := []models.Investment{
		mustInvestment(t, models.AssetStock, "Apple", entry, 100, 1000),
		mustInvestment(t, models.AssetBond, "Muni Fund", entry, 50, 500),
	}
	quotes := []models.PriceQuote{
		liveQuote("AAPL", models.AssetStock, 120),
		{Symbol: "", AssetClass: models.AssetBond, Price: 50, Source: "none", IsFallback: true},
	}

	snap := Snapshot(investments, quotes, now)
	require.Equal(t, 1, snap.FallbackCount)
	// The fallback holding carries zero PnL, so it is not a win.
	require.InDelta(t, 0.5, snap.WinRate, 1e-9)
}

func TestSnapshotTieBreakByAmountInvested(t *testing.T) {
	now := time.Now()
	entry := now.AddDate(0, -1, 0)
	investments := []models.Investment{
		mustInvestment(t, models.AssetStock, "Small", entry, 100, 500),
		mustInvestment(t, models.AssetStock, "Large", entry, 100, 2000),
	}
	quotes := []models.PriceQuote{
		liveQuote("SMALL", models.AssetStock, 110),
		liveQuote("LARGE", models.AssetStock, 110),
	}

	snap := Snapshot(investments, quotes, now)
	require.Equal(t, "Large", snap.BestPerformer.DisplayName)
	require.Equal(t, "Large", snap.WorstPerformer.DisplayName)
}

func TestAnnualize(t *testing.T) {
	got, ok := annualize(1.0, 365)
	require.True(t, ok)
	require.InDelta(t, 1.0, got, 1e-9)

	// Six months at +10% compounds to ~21% yearly.
	got, ok = annualize(0.10, 182)
	require.True(t, ok)
	require.InDelta(t, math.Pow(1.10, 365.0/182.0)-1, got, 1e-9)

	// Worse than total loss has no defined rate.
	_, ok = annualize(-1.5, 100)
	require.False(t, ok)

	// Same-day entries are treated as one day held.
	got, ok = annualize(0, 0)
	require.True(t, ok)
	require.Zero(t, got)
}

func TestComputeForMixesLiveAndFallback(t *testing.T) {
	live := &stubSource{
		name:      "live",
		currentFn: func(int) (float64, error) { return 120.0, nil },
	}
	fetcher, _ := newTestFetcher(t, map[models.AssetClass][]drepo.PriceSource{
		models.AssetStock: {live},
	})

	now := time.Now()
	store := &memStore{list: []models.Investment{
		mustInvestment(t, models.AssetStock, "Apple", now.AddDate(0, -1, 0), 100, 1000),
		mustInvestment(t, models.AssetBond, "Muni Fund", now.AddDate(0, -1, 0), 50, 500),
	}}

	engine := NewAnalyticsEngine(store, fetcher, nopMetrics{}, testLogger(t))
	snap, err := engine.Compute(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 2)
	require.Equal(t, 1, snap.FallbackCount, "bond class has no providers")
	require.InDelta(t, 1200+500, snap.TotalCurrentValue, 1e-9)
}
