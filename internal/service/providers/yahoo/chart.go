package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	xhttp "FolioPulse/pkg/http"
)

// ChartAPI is the secondary stock provider, backed by the v8 chart endpoint.
// It also carries the historical series for stocks.
type ChartAPI struct {
	baseURL string
	client  *xhttp.Client
}

func NewChartAPI(baseURL string, timeout time.Duration) *ChartAPI {
	return &ChartAPI{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *ChartAPI) Name() string { return "yahoo-chart" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *ChartAPI) fetch(ctx context.Context, symbol string, params map[string][]string) (*chartResponse, error) {
	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + symbol,
		Headers:     map[string]string{"User-Agent": browserUA},
		QueryParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, drepo.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart: http %d", resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoo chart: decode: %w", err)
	}
	if body.Chart.Error != nil {
		if body.Chart.Error.Code == "Not Found" {
			return nil, drepo.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("yahoo chart: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, drepo.ErrSymbolNotFound
	}
	return &body, nil
}

func (c *ChartAPI) Current(ctx context.Context, symbol string) (float64, error) {
	body, err := c.fetch(ctx, symbol, nil)
	if err != nil {
		return 0, err
	}
	price := body.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("yahoo chart: no price for %s", symbol)
	}
	return price, nil
}

// History returns daily closes from since until now, ascending by date.
func (c *ChartAPI) History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	body, err := c.fetch(ctx, symbol, map[string][]string{
		"period1":  {strconv.FormatInt(since.Unix(), 10)},
		"period2":  {strconv.FormatInt(time.Now().Unix(), 10)},
		"interval": {"1d"},
	})
	if err != nil {
		return nil, err
	}

	result := body.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart: empty series for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // market holidays come back as nulls
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Price: *closes[i],
		})
	}
	return points, nil
}

var _ drepo.PriceSource = (*ChartAPI)(nil)
