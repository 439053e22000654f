package scanner

import (
	"context"
	"math"
	"testing"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// ladderSource quotes per-size spreads around 1.0: buy at 1.0, sell at
// 1.0 + bps/10000. Sizes missing from the map get ErrNoLiquidity.
func ladderSource(name string, sellBpsBySize map[float64]float64) *stubSource {
	return &stubSource{
		name: name,
		fn: func(_ domain.Token, size float64, dir domain.Direction) (float64, error) {
			bps, ok := sellBpsBySize[size]
			if !ok {
				return 0, domain.ErrNoLiquidity
			}
			if dir == domain.DirectionBuy {
				return 1.0, nil
			}
			return 1.0 + bps/10000, nil
		},
	}
}

func mapToken(t *testing.T, sources []domain.PriceSource, ladder []float64, probeSize float64) (domain.LiquidityDepth, []SizeQuotes) {
	t.Helper()
	gate := NewGate(sources, probeSize, -50, testLogger())
	token := domain.Token{Symbol: "stETH"}
	probe, err := gate.Probe(context.Background(), token)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !probe.Viable {
		t.Fatalf("probe not viable, spread %v", probe.SpreadBps)
	}
	mapper := NewMapper(sources, ladder, testLogger())
	depth, quotes, err := mapper.Map(context.Background(), token, probe)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	return depth, quotes
}

func TestMapperRecordsGapAsAbsent(t *testing.T) {
	src := ladderSource("a", map[float64]float64{1: 10, 5: 15, 25: 5})
	depth, _ := mapToken(t, []domain.PriceSource{src}, []float64{5, 10, 25}, 1)

	wantSizes := []float64{1, 5, 10, 25}
	if len(depth.Sizes) != len(wantSizes) {
		t.Fatalf("Sizes = %v, want %v", depth.Sizes, wantSizes)
	}
	for i, s := range wantSizes {
		if depth.Sizes[i] != s {
			t.Fatalf("Sizes = %v, want %v", depth.Sizes, wantSizes)
		}
	}

	if p := depth.Points[10]; p.Available {
		t.Errorf("size 10 should be absent, got %+v", p)
	}
	for _, s := range []float64{1, 5, 25} {
		if p := depth.Points[s]; !p.Available {
			t.Errorf("size %v should be present", s)
		}
	}
}

func TestMapperBestSpreadAndMaxProfitableSize(t *testing.T) {
	// Positive at 5 and 25, negative at 10: max profitable is still 25.
	src := ladderSource("a", map[float64]float64{1: 10, 5: 15, 10: -5, 25: 3})
	depth, _ := mapToken(t, []domain.PriceSource{src}, []float64{5, 10, 25}, 1)

	if math.Abs(depth.BestSpreadBps-15) > 1e-6 {
		t.Errorf("BestSpreadBps = %v, want 15", depth.BestSpreadBps)
	}
	if depth.MaxProfitableSize != 25 {
		t.Errorf("MaxProfitableSize = %v, want 25", depth.MaxProfitableSize)
	}
}

func TestMapperReusesProbeQuotes(t *testing.T) {
	// Probe size 5 is on the ladder, so Map must only query the other rungs.
	src := ladderSource("a", map[float64]float64{5: 10, 10: 10})
	sources := []domain.PriceSource{src}

	gate := NewGate(sources, 5, -50, testLogger())
	token := domain.Token{Symbol: "rETH"}
	probe, err := gate.Probe(context.Background(), token)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	before := src.calls
	mapper := NewMapper(sources, []float64{5, 10}, testLogger())
	if _, _, err := mapper.Map(context.Background(), token, probe); err != nil {
		t.Fatalf("Map: %v", err)
	}

	// One remaining rung, two directions.
	if got := src.calls - before; got != 2 {
		t.Errorf("Map made %d venue calls, want 2", got)
	}
}

func TestMapperAllRungsAbsent(t *testing.T) {
	// Probe answers but every ladder rung is dry.
	src := ladderSource("a", map[float64]float64{1: 10})
	depth, quotes := mapToken(t, []domain.PriceSource{src}, []float64{5, 10}, 1)

	if depth.MaxProfitableSize != 1 {
		t.Errorf("MaxProfitableSize = %v, want 1 (probe rung)", depth.MaxProfitableSize)
	}
	for _, s := range []float64{5, 10} {
		if depth.Points[s].Available {
			t.Errorf("size %v should be absent", s)
		}
	}
	if len(quotes) != 3 {
		t.Errorf("quotes for %d rungs, want 3", len(quotes))
	}
}

func TestMapperAbortsOnContextCancel(t *testing.T) {
	src := ladderSource("a", map[float64]float64{1: 10, 5: 10})
	gate := NewGate([]domain.PriceSource{src}, 1, -50, testLogger())
	token := domain.Token{Symbol: "cbETH"}
	probe, err := gate.Probe(context.Background(), token)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	cancelled := &stubSource{
		name: "a",
		fn: func(_ domain.Token, _ float64, _ domain.Direction) (float64, error) {
			return 0, context.Canceled
		},
	}
	mapper := NewMapper([]domain.PriceSource{cancelled}, []float64{5}, testLogger())
	if _, _, err := mapper.Map(context.Background(), token, probe); err == nil {
		t.Fatal("expected context error to propagate")
	}
}
