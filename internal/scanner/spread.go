package scanner

// InvalidSpreadBps is returned when a spread cannot be computed because the
// buy price is zero or negative. It is well below any threshold a
// configuration could reasonably set, so invalid quotes never pass a gate.
const InvalidSpreadBps = -10000.0

// SpreadBps returns the cross-venue spread in basis points for buying at
// buyPrice and selling at sellPrice. Positive means selling above the buy
// price; negative means the route loses money before costs.
func SpreadBps(buyPrice, sellPrice float64) float64 {
	if buyPrice <= 0 {
		return InvalidSpreadBps
	}
	return ((sellPrice - buyPrice) / buyPrice) * 10000
}
