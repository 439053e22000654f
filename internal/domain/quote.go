package domain

import "math"

// Direction is the side of a quote request: buying the token with ETH or
// selling the token back into ETH.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Quote is a single venue price for trading Size ETH-equivalent of a token in
// one direction. Price is denominated in ETH per unit of token. Quotes are
// immutable once obtained and discarded at the end of the scan pass that
// produced them.
type Quote struct {
	Venue     string    `json:"venue"`
	Token     string    `json:"token"`
	Direction Direction `json:"direction"`
	Size      float64   `json:"size"`
	Price     float64   `json:"price"`
	// Source optionally names the underlying liquidity route (e.g. an
	// aggregator's best source) for display and audit.
	Source string `json:"source,omitempty"`
}

// Valid reports whether the quote carries a usable price. A non-finite or
// non-positive price means the quote must be treated as absent.
func (q Quote) Valid() bool {
	return q.Price > 0 && !math.IsInf(q.Price, 0) && !math.IsNaN(q.Price)
}
