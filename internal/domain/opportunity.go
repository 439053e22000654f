package domain

import "time"

// Opportunity is one ranked cross-venue arbitrage candidate: buy TradeSize
// ETH worth of the token on BuyVenue, sell it on SellVenue. Derived data,
// recomputed every scan and never mutated after creation. NetProfit may be
// negative; callers filter "profitable" separately.
type Opportunity struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	BuyVenue    string    `json:"buy_venue"`
	SellVenue   string    `json:"sell_venue"`
	BuyPrice    float64   `json:"buy_price"`
	SellPrice   float64   `json:"sell_price"`
	SpreadBps   float64   `json:"spread_bps"`
	TradeSize   float64   `json:"trade_size_eth"`
	GrossProfit float64   `json:"gross_profit_eth"`
	NetProfit   float64   `json:"net_profit_eth"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Profitable reports whether the opportunity clears its costs.
func (o Opportunity) Profitable() bool {
	return o.NetProfit > 0
}
