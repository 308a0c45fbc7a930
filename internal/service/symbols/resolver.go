package symbols

import (
	"errors"
	"regexp"
	"strings"

	"FolioPulse/internal/domain/models"
)

// ErrResolutionFailed means the display name could not be mapped to a
// provider symbol. Callers fall back to entry-price quotes, this is not a
// hard error.
var ErrResolutionFailed = errors.New("symbol resolution failed")

// tickerInParens matches "Apple Inc. (AAPL)" style names.
var tickerInParens = regexp.MustCompile(`\(([A-Za-z0-9.-]{1,10})\)`)

// Resolver maps free-text asset names to provider symbols. Pure lookup over
// static tables, no I/O, safe for concurrent use.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the provider-specific symbol for a display name. The rules,
// in order: parenthesized ticker, exact table lookup, partial table match,
// and verbatim passthrough for input that already looks like a symbol.
func (r *Resolver) Resolve(displayName string, class models.AssetClass) (string, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return "", ErrResolutionFailed
	}
	lower := strings.ToLower(name)

	if m := tickerInParens.FindStringSubmatch(name); m != nil {
		return r.normalizeTicker(m[1], class), nil
	}

	switch class {
	case models.AssetCrypto:
		if id, ok := cryptoNames[lower]; ok {
			return id, nil
		}
		if id, ok := cryptoTickers[lower]; ok {
			return id, nil
		}
		for key, id := range cryptoNames {
			if strings.Contains(lower, key) {
				return id, nil
			}
		}
	case models.AssetStock:
		if sym, ok := stockNames[lower]; ok {
			return sym, nil
		}
		for key, sym := range stockNames {
			if strings.Contains(lower, key) {
				return sym, nil
			}
		}
	}

	if looksLikeSymbol(name) {
		return r.normalizeTicker(name, class), nil
	}
	return "", ErrResolutionFailed
}

func (r *Resolver) normalizeTicker(s string, class models.AssetClass) string {
	if class == models.AssetCrypto {
		if id, ok := cryptoTickers[strings.ToLower(s)]; ok {
			return id
		}
		return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	}
	return strings.ToUpper(s)
}

// looksLikeSymbol accepts short alphanumeric input (dots and dashes allowed
// for tickers like BRK-B) with no spaces.
func looksLikeSymbol(s string) bool {
	if len(s) == 0 || len(s) > 10 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.':
		default:
			return false
		}
	}
	return true
}
