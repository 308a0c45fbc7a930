package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	drepo "FolioPulse/internal/domain/repository"
)

func TestQuoteCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v7/finance/quote", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":187.5}]}}`))
	}))
	defer srv.Close()

	q := NewQuoteAPI(srv.URL, time.Second)
	price, err := q.Current(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 187.5, price)
}

func TestQuoteCurrentUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
	}))
	defer srv.Close()

	q := NewQuoteAPI(srv.URL, time.Second)
	_, err := q.Current(context.Background(), "NOPE")
	require.ErrorIs(t, err, drepo.ErrSymbolNotFound)
}

func TestQuoteCurrentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	q := NewQuoteAPI(srv.URL, time.Second)
	_, err := q.Current(context.Background(), "AAPL")
	require.Error(t, err)
	require.NotErrorIs(t, err, drepo.ErrSymbolNotFound)
}

func TestQuoteHistoryNotSupported(t *testing.T) {
	q := NewQuoteAPI("http://unused", time.Second)
	_, err := q.History(context.Background(), "AAPL", time.Now())
	require.ErrorIs(t, err, drepo.ErrNotSupported)
}

func TestChartCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":190.25}}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewChartAPI(srv.URL, time.Second)
	price, err := c.Current(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 190.25, price)
}

func TestChartNotFoundError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewChartAPI(srv.URL, time.Second)
	_, err := c.Current(context.Background(), "NOPE")
	require.ErrorIs(t, err, drepo.ErrSymbolNotFound)
}

func TestChartHistorySkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.NotEmpty(t, q.Get("period1"))
		require.Equal(t, "1d", q.Get("interval"))
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"regularMarketPrice":190.25},
			"timestamp":[1704067200,1704153600,1704240000],
			"indicators":{"quote":[{"close":[185.5,null,186.75]}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewChartAPI(srv.URL, time.Second)
	points, err := c.History(context.Background(), "AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 2, "null closes are market holidays")
	require.Equal(t, 185.5, points[0].Price)
	require.Equal(t, 186.75, points[1].Price)
	require.True(t, points[0].Date.Before(points[1].Date))
}
