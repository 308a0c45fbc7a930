package models

import (
	"fmt"
	"time"
)

// AssetClass determines which provider chain and resolution rules apply.
type AssetClass string

const (
	AssetStock      AssetClass = "stock"
	AssetCrypto     AssetClass = "crypto"
	AssetBond       AssetClass = "bond"
	AssetRealEstate AssetClass = "real_estate"
	AssetOther      AssetClass = "other"
)

// Valid reports whether the asset class is one of the known values.
func (a AssetClass) Valid() bool {
	switch a {
	case AssetStock, AssetCrypto, AssetBond, AssetRealEstate, AssetOther:
		return true
	}
	return false
}

// Investment is a single holding. Quantity is derived from AmountInvested and
// EntryPrice and is never mutated independently.
type Investment struct {
	ID             string     `json:"id"`
	AssetClass     AssetClass `json:"asset_class"`
	DisplayName    string     `json:"display_name"`
	ResolvedSymbol string     `json:"resolved_symbol,omitempty"`
	EntryDate      time.Time  `json:"entry_date"`
	EntryPrice     float64    `json:"entry_price"`
	AmountInvested float64    `json:"amount_invested"`
	Quantity       float64    `json:"quantity"`
	RiskLevel      string     `json:"risk_level,omitempty"`
}

// NewInvestment builds a validated Investment with derived quantity.
func NewInvestment(id string, class AssetClass, name string, entryDate time.Time, entryPrice, amountInvested float64, riskLevel string) (Investment, error) {
	inv := Investment{
		ID:             id,
		AssetClass:     class,
		DisplayName:    name,
		EntryDate:      entryDate,
		EntryPrice:     entryPrice,
		AmountInvested: amountInvested,
		RiskLevel:      riskLevel,
	}
	if err := inv.Validate(); err != nil {
		return Investment{}, err
	}
	inv.Quantity = amountInvested / entryPrice
	return inv, nil
}

// Validate rejects malformed investments before they reach the engine.
func (i Investment) Validate() error {
	if i.DisplayName == "" {
		return fmt.Errorf("%w: display_name required", ErrInvalidInvestment)
	}
	if !i.AssetClass.Valid() {
		return fmt.Errorf("%w: unknown asset class %q", ErrInvalidInvestment, i.AssetClass)
	}
	if i.EntryPrice <= 0 {
		return fmt.Errorf("%w: entry_price must be > 0", ErrInvalidInvestment)
	}
	if i.AmountInvested <= 0 {
		return fmt.Errorf("%w: amount_invested must be > 0", ErrInvalidInvestment)
	}
	return nil
}

// WithEdit returns a replacement record with quantity re-derived. The original
// is left untouched so callers can swap records atomically.
func (i Investment) WithEdit(name string, class AssetClass, entryDate time.Time, entryPrice, amountInvested float64, riskLevel string) (Investment, error) {
	edited := i
	edited.DisplayName = name
	edited.AssetClass = class
	edited.EntryDate = entryDate
	edited.EntryPrice = entryPrice
	edited.AmountInvested = amountInvested
	edited.RiskLevel = riskLevel
	if err := edited.Validate(); err != nil {
		return Investment{}, err
	}
	edited.Quantity = amountInvested / entryPrice
	return edited, nil
}

// PriceQuote is the normalized shape every provider response is reduced to.
// IsFallback means no live source succeeded and Price equals the holding's
// entry price.
type PriceQuote struct {
	Symbol     string     `json:"symbol"`
	AssetClass AssetClass `json:"asset_class"`
	Price      float64    `json:"price"`
	AsOf       time.Time  `json:"as_of"`
	Source     string     `json:"source"`
	IsFallback bool       `json:"is_fallback"`
}

// PricePoint is one element of a historical series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// HoldingMetrics is the per-holding slice of a snapshot.
type HoldingMetrics struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"display_name"`
	AssetClass      AssetClass `json:"asset_class"`
	Symbol          string     `json:"symbol,omitempty"`
	Quantity        float64    `json:"quantity"`
	EntryPrice      float64    `json:"entry_price"`
	CurrentPrice    float64    `json:"current_price"`
	AmountInvested  float64    `json:"amount_invested"`
	CurrentValue    float64    `json:"current_value"`
	PnLAbs          float64    `json:"pnl_abs"`
	PnLPct          float64    `json:"pnl_pct"`
	HoldingDays     int        `json:"holding_days"`
	Annualized      float64    `json:"annualized_return"`
	AnnualizedValid bool       `json:"annualized_valid"`
	IsFallback      bool       `json:"is_fallback"`
	Source          string     `json:"source"`
}

// PortfolioSnapshot is pure derived state, recomputed on every analytics pass
// and never persisted.
type PortfolioSnapshot struct {
	Holdings          []HoldingMetrics       `json:"holdings"`
	TotalInvested     float64                `json:"total_invested"`
	TotalCurrentValue float64                `json:"total_current_value"`
	TotalPnLAbs       float64                `json:"total_pnl_abs"`
	TotalPnLPct       float64                `json:"total_pnl_pct"`
	Allocation        map[AssetClass]float64 `json:"allocation_by_asset_class"`
	Concentration     float64                `json:"concentration"`
	WinRate           float64                `json:"win_rate"`
	BestPerformer     *HoldingMetrics        `json:"best_performer,omitempty"`
	WorstPerformer    *HoldingMetrics        `json:"worst_performer,omitempty"`
	FallbackCount     int                    `json:"fallback_count"`
	GeneratedAt       time.Time              `json:"generated_at"`
}
