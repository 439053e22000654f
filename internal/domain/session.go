package domain

import (
	"sync"
	"time"
)

// SessionStats accumulates counters across repeated scan passes. It is reset
// only at process start. Counter updates are guarded by a single mutex; the
// orchestrator is the only writer but the dashboard reads concurrently.
type SessionStats struct {
	mu sync.Mutex

	startedAt          time.Time
	scans              int64
	opportunitiesFound int64
	profitableCount    int64
	cumulativeNet      float64
}

// SessionSnapshot is a point-in-time copy of the session counters, safe to
// serialize without holding the lock.
type SessionSnapshot struct {
	StartedAt           time.Time `json:"started_at"`
	UptimeSeconds       int64     `json:"uptime_seconds"`
	Scans               int64     `json:"scans"`
	OpportunitiesFound  int64     `json:"opportunities_found"`
	ProfitableCount     int64     `json:"profitable_count"`
	CumulativeNetProfit float64   `json:"cumulative_net_profit_eth"`
}

// NewSessionStats creates an empty counter set anchored at now.
func NewSessionStats() *SessionStats {
	return &SessionStats{startedAt: time.Now().UTC()}
}

// RecordScan increments the pass counter.
func (s *SessionStats) RecordScan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
}

// RecordOpportunity counts one surfaced opportunity; profitable ones also
// contribute their net profit to the session total.
func (s *SessionStats) RecordOpportunity(netProfit float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunitiesFound++
	if netProfit > 0 {
		s.profitableCount++
		s.cumulativeNet += netProfit
	}
}

// Snapshot returns a copy of the current counters.
func (s *SessionStats) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		StartedAt:           s.startedAt,
		UptimeSeconds:       int64(time.Since(s.startedAt).Seconds()),
		Scans:               s.scans,
		OpportunitiesFound:  s.opportunitiesFound,
		ProfitableCount:     s.profitableCount,
		CumulativeNetProfit: s.cumulativeNet,
	}
}
