package scanner

import (
	"math"
	"testing"
)

func TestSpreadBpsZeroWhenPricesEqual(t *testing.T) {
	if got := SpreadBps(1.0, 1.0); got != 0 {
		t.Errorf("SpreadBps(1.0, 1.0) = %v, want 0", got)
	}
}

func TestSpreadBpsTwentyBps(t *testing.T) {
	got := SpreadBps(1.0, 1.002)
	if math.Abs(got-20) > 1e-9 {
		t.Errorf("SpreadBps(1.0, 1.002) = %v, want 20", got)
	}
}

func TestSpreadBpsNegative(t *testing.T) {
	got := SpreadBps(1.002, 1.0)
	want := ((1.0 - 1.002) / 1.002) * 10000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("SpreadBps(1.002, 1.0) = %v, want %v", got, want)
	}
	if got >= 0 {
		t.Errorf("expected negative spread, got %v", got)
	}
}

func TestSpreadBpsInvalidBuyPrice(t *testing.T) {
	for _, buy := range []float64{0, -1} {
		if got := SpreadBps(buy, 1.0); got != InvalidSpreadBps {
			t.Errorf("SpreadBps(%v, 1.0) = %v, want %v", buy, got, InvalidSpreadBps)
		}
	}
}

func TestSpreadBpsMonotonicInSellPrice(t *testing.T) {
	prev := SpreadBps(1.0, 0.99)
	for _, sell := range []float64{0.995, 1.0, 1.001, 1.01, 1.1} {
		got := SpreadBps(1.0, sell)
		if got <= prev {
			t.Errorf("spread not increasing: SpreadBps(1.0, %v) = %v, previous %v", sell, got, prev)
		}
		prev = got
	}
}
