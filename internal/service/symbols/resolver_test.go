package symbols

import (
	"errors"
	"testing"

	"FolioPulse/internal/domain/models"
)

func TestResolveStock(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name string
		want string
	}{
		{"Apple", "AAPL"},
		{"apple inc.", "AAPL"},
		{"Apple Inc. (AAPL)", "AAPL"},
		{"Microsoft Corp.", "MSFT"},
		{"My Tesla shares", "TSLA"},
		{"AAPL", "AAPL"},
		{"brk-b", "BRK-B"},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.name, models.AssetStock)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveCrypto(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name string
		want string
	}{
		{"Bitcoin", "bitcoin"},
		{"BTC", "bitcoin"},
		{"Ethereum (ETH)", "ethereum"},
		{"bitcoin holdings", "bitcoin"},
		{"Avalanche", "avalanche-2"},
		{"some-coin", "some-coin"},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.name, models.AssetCrypto)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveParensWinsOverTable(t *testing.T) {
	r := NewResolver()
	got, err := r.Resolve("Apple Hospitality REIT (APLE)", models.AssetStock)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "APLE" {
		t.Fatalf("got %q want APLE", got)
	}
}

func TestResolveFailure(t *testing.T) {
	r := NewResolver()
	for _, name := range []string{"", "   ", "some obscure private fund nobody lists"} {
		if _, err := r.Resolve(name, models.AssetStock); !errors.Is(err, ErrResolutionFailed) {
			t.Fatalf("%q: expected ErrResolutionFailed, got %v", name, err)
		}
	}
}

func TestResolveUnlistedClassPassesSymbolThrough(t *testing.T) {
	r := NewResolver()
	got, err := r.Resolve("VNQ", models.AssetRealEstate)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "VNQ" {
		t.Fatalf("got %q want VNQ", got)
	}
}
