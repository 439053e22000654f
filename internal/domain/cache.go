package domain

import (
	"context"
	"time"
)

// SnapshotCache stores the latest completed scan so a dashboard-only process
// can serve results without running its own scanner. Only the most recent
// snapshot is kept; historical scans are never persisted.
type SnapshotCache interface {
	SetScan(ctx context.Context, result ScanResult) error
	GetScan(ctx context.Context) (ScanResult, error)
	SetSession(ctx context.Context, snap SessionSnapshot) error
	GetSession(ctx context.Context) (SessionSnapshot, error)
}

// RateLimiter bounds the call rate against a single venue, shared across
// processes when backed by Redis.
type RateLimiter interface {
	// Allow reports whether one more call to key is permitted within the
	// sliding window, counting the call when it is.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus is the pub/sub fabric between the scanner and the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads; it is closed when ctx is
	// cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
