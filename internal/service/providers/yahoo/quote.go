package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	xhttp "FolioPulse/pkg/http"
)

// browserUA avoids the bot block on the public quote endpoints.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// QuoteAPI is the primary stock provider, backed by the v7 quote endpoint.
type QuoteAPI struct {
	baseURL string
	client  *xhttp.Client
}

func NewQuoteAPI(baseURL string, timeout time.Duration) *QuoteAPI {
	return &QuoteAPI{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (q *QuoteAPI) Name() string { return "yahoo-quote" }

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (q *QuoteAPI) Current(ctx context.Context, symbol string) (float64, error) {
	resp, err := q.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         q.baseURL + "/v7/finance/quote",
		Headers:     map[string]string{"User-Agent": browserUA},
		QueryParams: map[string][]string{"symbols": {symbol}},
	})
	if err != nil {
		return 0, fmt.Errorf("yahoo quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, drepo.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("yahoo quote: http %d", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("yahoo quote: decode: %w", err)
	}
	if len(body.QuoteResponse.Result) == 0 {
		return 0, drepo.ErrSymbolNotFound
	}
	price := body.QuoteResponse.Result[0].RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("yahoo quote: no price for %s", symbol)
	}
	return price, nil
}

// History is not offered by the v7 quote endpoint; the chain falls through to
// the chart provider.
func (q *QuoteAPI) History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	return nil, drepo.ErrNotSupported
}

var _ drepo.PriceSource = (*QuoteAPI)(nil)
