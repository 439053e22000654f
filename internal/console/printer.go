// Package console renders scan results as an operator-facing terminal
// monitor: per-token depth lines, the ranked opportunity list, and running
// session totals.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

const (
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiRed    = "\033[91m"
	ansiReset  = "\033[0m"

	ruleHeavy = "======================================================================"
	ruleLight = "----------------------------------------------------------------------"

	// Only the best few routes are worth a terminal line per scan.
	maxPrintedRoutes = 5
)

// Printer writes scan output to a terminal. It implements the scanner sink
// callbacks and is safe for use from the scan goroutine while Summary is
// called at shutdown.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	stats *domain.SessionStats
	color bool
}

// NewPrinter creates a Printer writing to w. Disable color when w is not a
// terminal.
func NewPrinter(w io.Writer, stats *domain.SessionStats, color bool) *Printer {
	return &Printer{w: w, stats: stats, color: color}
}

// Banner prints the startup header describing the run parameters.
func (p *Printer) Banner(mode string, minSpreadBps, flatCost, flashFeeRate float64, sizes []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n%s\n", ruleHeavy)
	fmt.Fprintln(p.w, "  LST/LRT ARBITRAGE SCANNER")
	fmt.Fprintf(p.w, "  MODE: %s - no trades executed\n", mode)
	fmt.Fprintf(p.w, "%s\n", ruleHeavy)
	fmt.Fprintf(p.w, "  Min Spread:     %.0f bps (%.2f%%)\n", minSpreadBps, minSpreadBps/100)
	fmt.Fprintf(p.w, "  Trade Sizes:    %v ETH\n", sizes)
	fmt.Fprintf(p.w, "  Est. Gas Cost:  %.4f ETH\n", flatCost)
	fmt.Fprintf(p.w, "  Flash Loan Fee: %.2f%%\n", flashFeeRate*100)
	fmt.Fprintf(p.w, "%s\n\n", ruleHeavy)
}

// ScanCompleted renders one finished scan.
func (p *Printer) ScanCompleted(_ context.Context, result domain.ScanResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n%s\n", ruleLight)
	fmt.Fprintf(p.w, "  SCAN #%d | %s\n", result.Sequence, result.CompletedAt.Format("15:04:05"))
	fmt.Fprintf(p.w, "%s\n", ruleLight)

	for _, symbol := range sortedTokens(result.Depths) {
		p.printDepth(result.Depths[symbol])
	}

	if len(result.Opportunities) == 0 {
		fmt.Fprintln(p.w, "\n  No opportunities above threshold.")
	} else {
		fmt.Fprintf(p.w, "\n  OPPORTUNITIES FOUND: %d\n", len(result.Opportunities))
		for i, o := range result.Opportunities {
			if i == maxPrintedRoutes {
				fmt.Fprintf(p.w, "\n  ... %d more not shown\n", len(result.Opportunities)-maxPrintedRoutes)
				break
			}
			p.printOpportunity(o, i+1)
		}
	}

	snap := p.stats.Snapshot()
	fmt.Fprintf(p.w, "\n%s\n", ruleLight)
	fmt.Fprintf(p.w, "  SESSION: %d scans | %d opps | %d profitable | %.4f ETH theoretical\n",
		snap.Scans, snap.OpportunitiesFound, snap.ProfitableCount, snap.CumulativeNetProfit)
}

// ScanFailed renders an aborted scan pass.
func (p *Printer) ScanFailed(_ context.Context, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\n  %sSCAN FAILED:%s %v\n", p.paint(ansiRed), p.paint(ansiReset), err)
}

// Summary prints the final session totals, typically on shutdown.
func (p *Printer) Summary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := p.stats.Snapshot()
	fmt.Fprintf(p.w, "\n%s\n", ruleHeavy)
	fmt.Fprintln(p.w, "  FINAL SUMMARY")
	fmt.Fprintf(p.w, "%s\n", ruleHeavy)
	fmt.Fprintf(p.w, "  Uptime:             %s\n", (time.Duration(snap.UptimeSeconds) * time.Second).String())
	fmt.Fprintf(p.w, "  Scans:              %d\n", snap.Scans)
	fmt.Fprintf(p.w, "  Opportunities:      %d\n", snap.OpportunitiesFound)
	fmt.Fprintf(p.w, "  Profitable:         %d\n", snap.ProfitableCount)
	fmt.Fprintf(p.w, "  Theoretical Profit: %.4f ETH\n", snap.CumulativeNetProfit)
	fmt.Fprintf(p.w, "%s\n\n", ruleHeavy)
}

func (p *Printer) printDepth(d domain.LiquidityDepth) {
	if !d.Viable {
		fmt.Fprintf(p.w, "\n  %s: skipped (probe %.1f bps)\n", d.Token, d.InitialSpreadBps)
		return
	}
	fmt.Fprintf(p.w, "\n  %s: best %.1f bps | max profitable size %.1f ETH\n",
		d.Token, d.BestSpreadBps, d.MaxProfitableSize)
	for _, size := range d.Sizes {
		point := d.Points[size]
		if !point.Available {
			fmt.Fprintf(p.w, "    %6.1f ETH | no quote\n", size)
			continue
		}
		fmt.Fprintf(p.w, "    %6.1f ETH | spread %+.1f bps\n", size, point.SpreadBps)
	}
}

func (p *Printer) printOpportunity(o domain.Opportunity, idx int) {
	color := ansiYellow
	if o.Profitable() {
		color = ansiGreen
	}
	fmt.Fprintf(p.w, "\n%s  [%d] %s: %s -> %s%s\n",
		p.paint(color), idx, o.Token, o.BuyVenue, o.SellVenue, p.paint(ansiReset))
	fmt.Fprintf(p.w, "      Spread: %.1f bps | Size: %.1f ETH\n", o.SpreadBps, o.TradeSize)
	fmt.Fprintf(p.w, "      Gross: %+.6f ETH | Net: %+.6f ETH\n", o.GrossProfit, o.NetProfit)
}

func (p *Printer) paint(code string) string {
	if !p.color {
		return ""
	}
	return code
}

func sortedTokens(depths map[string]domain.LiquidityDepth) []string {
	out := make([]string, 0, len(depths))
	for symbol := range depths {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
