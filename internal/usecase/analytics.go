package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	xlogger "FolioPulse/pkg/logger"
	"FolioPulse/pkg/util"
)

// fetchParallelism bounds concurrent per-holding fetches. The shared rate
// limiter still serializes calls per provider underneath.
const fetchParallelism = 4

// AnalyticsEngine turns the holdings list plus live quotes into a portfolio
// snapshot. It owns no state of its own; every pass recomputes from scratch.
type AnalyticsEngine struct {
	store   drepo.HoldingsStore
	fetcher *PriceFetcher
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

func NewAnalyticsEngine(store drepo.HoldingsStore, fetcher *PriceFetcher, metrics drepo.Metrics, logger *xlogger.Logger) *AnalyticsEngine {
	return &AnalyticsEngine{store: store, fetcher: fetcher, metrics: metrics, logger: logger}
}

// Compute loads the holdings, fetches quotes in parallel and aggregates. A
// failed or timed-out fetch degrades that holding to a fallback quote; it
// never fails the whole pass.
func (e *AnalyticsEngine) Compute(ctx context.Context) (*models.PortfolioSnapshot, error) {
	investments, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return e.ComputeFor(ctx, investments), nil
}

// ComputeFor runs the analytics pass over a caller-owned investment list.
// The input collection is never mutated.
func (e *AnalyticsEngine) ComputeFor(ctx context.Context, investments []models.Investment) *models.PortfolioSnapshot {
	start := time.Now()
	quotes := make([]models.PriceQuote, len(investments))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, inv := range investments {
		g.Go(func() error {
			quotes[i] = e.fetcher.QuoteFor(gCtx, inv)
			return nil
		})
	}
	_ = g.Wait() // QuoteFor absorbs all failures

	snap := Snapshot(investments, quotes, time.Now())
	e.metrics.RecordLatency("analytics_pass", time.Since(start).Seconds())
	e.logger.Debug("analytics pass complete",
		xlogger.Int("holdings", len(investments)),
		xlogger.Int("fallbacks", snap.FallbackCount))
	return snap
}

// Snapshot is the pure aggregation step: deterministic arithmetic over
// investments and their quotes, no I/O and no hidden state. quotes[i] must
// correspond to investments[i].
func Snapshot(investments []models.Investment, quotes []models.PriceQuote, now time.Time) *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		Holdings:    make([]models.HoldingMetrics, 0, len(investments)),
		Allocation:  make(map[models.AssetClass]float64),
		GeneratedAt: now,
	}

	wins := 0
	for i, inv := range investments {
		m := holdingMetrics(inv, quotes[i], now)
		snap.Holdings = append(snap.Holdings, m)
		snap.TotalInvested += m.AmountInvested
		snap.TotalCurrentValue += m.CurrentValue
		if m.IsFallback {
			snap.FallbackCount++
		}
		if m.PnLAbs > 0 {
			wins++
		}
	}

	snap.TotalPnLAbs = snap.TotalCurrentValue - snap.TotalInvested
	if snap.TotalInvested > 0 {
		snap.TotalPnLPct = snap.TotalPnLAbs / snap.TotalInvested
	}
	if n := len(snap.Holdings); n > 0 {
		snap.WinRate = float64(wins) / float64(n)
	}

	if snap.TotalCurrentValue > 0 {
		for _, m := range snap.Holdings {
			snap.Allocation[m.AssetClass] += m.CurrentValue / snap.TotalCurrentValue
		}
		// Herfindahl over individual holdings, not classes.
		for _, m := range snap.Holdings {
			w := m.CurrentValue / snap.TotalCurrentValue
			snap.Concentration += w * w
		}
	}

	if best := pickPerformer(snap.Holdings, func(a, b models.HoldingMetrics) bool {
		return a.PnLPct > b.PnLPct
	}); best != nil {
		snap.BestPerformer = best
	}
	if worst := pickPerformer(snap.Holdings, func(a, b models.HoldingMetrics) bool {
		return a.PnLPct < b.PnLPct
	}); worst != nil {
		snap.WorstPerformer = worst
	}
	return snap
}

func holdingMetrics(inv models.Investment, quote models.PriceQuote, now time.Time) models.HoldingMetrics {
	m := models.HoldingMetrics{
		ID:             inv.ID,
		DisplayName:    inv.DisplayName,
		AssetClass:     inv.AssetClass,
		Symbol:         quote.Symbol,
		Quantity:       inv.Quantity,
		EntryPrice:     inv.EntryPrice,
		CurrentPrice:   quote.Price,
		AmountInvested: inv.AmountInvested,
		IsFallback:     quote.IsFallback,
		Source:         quote.Source,
	}

	m.CurrentValue = inv.Quantity * quote.Price
	m.PnLAbs = m.CurrentValue - inv.AmountInvested
	if inv.AmountInvested > 0 {
		m.PnLPct = m.PnLAbs / inv.AmountInvested
	}

	days := util.DaysBetween(inv.EntryDate, now)
	m.HoldingDays = days

	m.Annualized, m.AnnualizedValid = annualize(m.PnLPct, days)
	return m
}

// annualize compounds the holding-period return to a yearly rate. The base is
// clamped at zero before exponentiation; a clamped (total-loss) holding has
// no defined annualized rate.
func annualize(pnlPct float64, days int) (float64, bool) {
	if days < 1 {
		days = 1
	}
	base := 1 + pnlPct
	if base < 0 {
		return 0, false
	}
	return math.Pow(base, 365/float64(days)) - 1, true
}

// pickPerformer finds the extreme holding under less, breaking ties by
// larger amount invested and then by input order.
func pickPerformer(holdings []models.HoldingMetrics, better func(a, b models.HoldingMetrics) bool) *models.HoldingMetrics {
	if len(holdings) == 0 {
		return nil
	}
	idx := make([]int, len(holdings))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ha, hb := holdings[idx[a]], holdings[idx[b]]
		if ha.PnLPct != hb.PnLPct {
			return better(ha, hb)
		}
		return ha.AmountInvested > hb.AmountInvested
	})
	picked := holdings[idx[0]]
	return &picked
}
