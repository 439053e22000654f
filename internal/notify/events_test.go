package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JWBcode/lst-arb/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memorySender struct {
	name     string
	events   []string
	titles   []string
	messages []string
	err      error
}

func (m *memorySender) Send(_ context.Context, event, title, message string) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
	return nil
}

func (m *memorySender) Name() string { return m.name }

func opportunity(net float64) domain.Opportunity {
	return domain.Opportunity{
		Token:     "stETH",
		BuyVenue:  "Curve",
		SellVenue: "0x",
		BuyPrice:  0.998,
		SellPrice: 1.000,
		SpreadBps: 20,
		TradeSize: 10,
		NetProfit: net,
	}
}

func TestScanAlerterAlertsOnProfitableRoutes(t *testing.T) {
	sender := &memorySender{name: "mem"}
	alerter := NewScanAlerter(NewNotifier([]Sender{sender}, nil, testLogger()), 0, testLogger())

	alerter.ScanCompleted(context.Background(), domain.ScanResult{
		Opportunities: []domain.Opportunity{opportunity(0.02), opportunity(-0.01)},
	})

	if len(sender.titles) != 1 {
		t.Fatalf("sender got %d alerts, want 1", len(sender.titles))
	}
	if !strings.Contains(sender.titles[0], "1 profitable") {
		t.Errorf("title = %q", sender.titles[0])
	}
	if sender.events[0] != EventOpportunityFound {
		t.Errorf("event = %q, want %q", sender.events[0], EventOpportunityFound)
	}
	if !strings.Contains(sender.messages[0], "buy Curve") || !strings.Contains(sender.messages[0], "sell 0x") {
		t.Errorf("message = %q", sender.messages[0])
	}
}

func TestScanAlerterStaysQuietBelowThreshold(t *testing.T) {
	sender := &memorySender{name: "mem"}
	alerter := NewScanAlerter(NewNotifier([]Sender{sender}, nil, testLogger()), 0.05, testLogger())

	alerter.ScanCompleted(context.Background(), domain.ScanResult{
		Opportunities: []domain.Opportunity{opportunity(0.02)},
	})

	if len(sender.titles) != 0 {
		t.Fatalf("sender got %d alerts, want none", len(sender.titles))
	}
}

func TestScanAlerterCapsListedRoutes(t *testing.T) {
	sender := &memorySender{name: "mem"}
	alerter := NewScanAlerter(NewNotifier([]Sender{sender}, nil, testLogger()), 0, testLogger())

	opps := make([]domain.Opportunity, maxAlertRoutes+3)
	for i := range opps {
		opps[i] = opportunity(0.01)
	}
	alerter.ScanCompleted(context.Background(), domain.ScanResult{Opportunities: opps})

	if len(sender.messages) != 1 {
		t.Fatalf("sender got %d alerts, want 1", len(sender.messages))
	}
	if !strings.Contains(sender.messages[0], "and 3 more") {
		t.Errorf("message should truncate: %q", sender.messages[0])
	}
}

func TestNotifierFiltersEvents(t *testing.T) {
	sender := &memorySender{name: "mem"}
	n := NewNotifier([]Sender{sender}, []string{EventScanError}, testLogger())

	if err := n.Notify(context.Background(), EventOpportunityFound, "t", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 0 {
		t.Error("filtered event reached sender")
	}

	if err := n.Notify(context.Background(), EventScanError, "t", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 {
		t.Error("allowed event did not reach sender")
	}
}

func TestNotifierCollectsSenderFailures(t *testing.T) {
	failing := &memorySender{name: "bad", err: context.DeadlineExceeded}
	working := &memorySender{name: "good"}
	n := NewNotifier([]Sender{failing, working}, nil, testLogger())

	err := n.NotifyAll(context.Background(), EventScanError, "t", "m")
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error should name the failing sender: %v", err)
	}
	if len(working.titles) != 1 {
		t.Error("working sender should still deliver")
	}
}

func TestFormatOpportunity(t *testing.T) {
	line := FormatOpportunity(opportunity(0.0123))
	for _, want := range []string{"stETH", "Curve", "0x", "20.0 bps", "size 10.0 ETH", "+0.0123 ETH"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
