package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"FolioPulse/internal/domain/models"
	drepo "FolioPulse/internal/domain/repository"
	xhttp "FolioPulse/pkg/http"
)

// Client fetches crypto prices from the CoinGecko public API. Symbols are
// CoinGecko asset ids ("bitcoin", "ethereum"), priced in USD.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return "coingecko" }

func (c *Client) Current(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {symbol},
			"vs_currencies": {"usd"},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko: http %d", resp.StatusCode)
	}

	// Unknown ids come back as an empty object, not an error status.
	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("coingecko: decode: %w", err)
	}
	usd, ok := body[symbol]["usd"]
	if !ok {
		return 0, drepo.ErrSymbolNotFound
	}
	if usd <= 0 {
		return 0, fmt.Errorf("coingecko: no price for %s", symbol)
	}
	return usd, nil
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// History returns the USD price series from since until now, ascending.
func (c *Client) History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	days := int(math.Ceil(time.Since(since).Hours() / 24))
	if days < 1 {
		days = 1
	}

	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/" + symbol + "/market_chart",
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(days)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, drepo.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko history: http %d", resp.StatusCode)
	}

	var body marketChart
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("coingecko history: decode: %w", err)
	}

	points := make([]models.PricePoint, 0, len(body.Prices))
	for _, p := range body.Prices {
		points = append(points, models.PricePoint{
			Date:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

var _ drepo.PriceSource = (*Client)(nil)
