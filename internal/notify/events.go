package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// Event types emitted by the scanner. The [notify] events config filters on
// these names.
const (
	EventOpportunityFound = "opportunity_found"
	EventScanError        = "scan_error"
)

// maxAlertRoutes caps how many routes a single alert message lists.
const maxAlertRoutes = 5

// ScanAlerter bridges scan results into the notifier. It alerts when a scan
// surfaces profitable routes and when a scan pass fails outright; everything
// else stays in the logs.
type ScanAlerter struct {
	notifier *Notifier
	minNet   float64 // minimum net profit in ETH before a route is alert-worthy
	logger   *slog.Logger
}

// NewScanAlerter creates a ScanAlerter. Routes netting below minNet ETH are
// not alerted even when profitable, to keep channels quiet on dust.
func NewScanAlerter(notifier *Notifier, minNet float64, logger *slog.Logger) *ScanAlerter {
	return &ScanAlerter{
		notifier: notifier,
		minNet:   minNet,
		logger:   logger.With(slog.String("component", "scan_alerter")),
	}
}

// ScanCompleted alerts on the profitable routes of a finished scan, if any.
func (a *ScanAlerter) ScanCompleted(ctx context.Context, result domain.ScanResult) {
	var alertable []domain.Opportunity
	for _, o := range result.Opportunities {
		if o.NetProfit > a.minNet {
			alertable = append(alertable, o)
		}
	}
	if len(alertable) == 0 {
		return
	}

	title := fmt.Sprintf("%d profitable route(s) found", len(alertable))
	var b strings.Builder
	for i, o := range alertable {
		if i == maxAlertRoutes {
			fmt.Fprintf(&b, "... and %d more\n", len(alertable)-maxAlertRoutes)
			break
		}
		b.WriteString(FormatOpportunity(o))
		b.WriteByte('\n')
	}

	if err := a.notifier.Notify(ctx, EventOpportunityFound, title, b.String()); err != nil {
		a.logger.ErrorContext(ctx, "opportunity alert failed", slog.String("error", err.Error()))
	}
}

// ScanFailed alerts that a scan pass aborted.
func (a *ScanAlerter) ScanFailed(ctx context.Context, err error) {
	title := "scan failed"
	if nErr := a.notifier.Notify(ctx, EventScanError, title, err.Error()); nErr != nil {
		a.logger.ErrorContext(ctx, "scan-error alert failed", slog.String("error", nErr.Error()))
	}
}

// FormatOpportunity renders one route as a single human-readable line, shared
// by the alerter and the console monitor.
func FormatOpportunity(o domain.Opportunity) string {
	return fmt.Sprintf("%s: buy %s @ %.6f, sell %s @ %.6f | %.1f bps | size %.1f ETH | net %+.4f ETH",
		o.Token, o.BuyVenue, o.BuyPrice, o.SellVenue, o.SellPrice,
		o.SpreadBps, o.TradeSize, o.NetProfit,
	)
}
