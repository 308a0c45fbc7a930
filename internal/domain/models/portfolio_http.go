package models

// Requests for the portfolio HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Class  string `query:"class" json:"class" default:"stock" validate:"oneof=stock crypto bond real_estate other"`
}

type HoldingRequest struct {
	DisplayName    string  `json:"display_name" validate:"required"`
	AssetClass     string  `json:"asset_class" validate:"oneof=stock crypto bond real_estate other"`
	EntryDate      string  `json:"entry_date" validate:"required"`
	EntryPrice     float64 `json:"entry_price" validate:"gt=0"`
	AmountInvested float64 `json:"amount_invested" validate:"gt=0"`
	RiskLevel      string  `json:"risk_level" default:"medium" validate:"oneof=low medium high"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Class  string `query:"class" json:"class" default:"stock" validate:"oneof=stock crypto bond real_estate other"`
	Since  string `query:"since" json:"since" validate:"required"`
}
