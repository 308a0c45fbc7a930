package models

import "errors"

// ErrInvalidInvestment marks malformed input holdings. This is the only error
// class that surfaces past the engine boundary; everything price-related is
// absorbed into fallback quotes.
var ErrInvalidInvestment = errors.New("invalid investment")
