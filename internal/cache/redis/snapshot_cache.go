package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JWBcode/lst-arb/internal/domain"
)

const (
	scanKey    = "lstarb:scan:latest"
	sessionKey = "lstarb:session"

	// A snapshot that outlives a few scan intervals is stale; expire it so a
	// dashboard pointed at a dead scanner reports "no data" instead of
	// serving hours-old depth maps.
	snapshotTTL = 30 * time.Minute
)

// SnapshotCache implements domain.SnapshotCache with plain JSON values. Only
// the latest scan is kept; every write replaces the previous one.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// SetScan stores the latest completed scan.
func (sc *SnapshotCache) SetScan(ctx context.Context, result domain.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: encode scan: %w", err)
	}
	if err := sc.rdb.Set(ctx, scanKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set scan: %w", err)
	}
	return nil
}

// GetScan retrieves the latest scan. It returns domain.ErrNotFound when no
// scan has been stored or the snapshot has expired.
func (sc *SnapshotCache) GetScan(ctx context.Context) (domain.ScanResult, error) {
	data, err := sc.rdb.Get(ctx, scanKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, domain.ErrNotFound
		}
		return domain.ScanResult{}, fmt.Errorf("redis: get scan: %w", err)
	}
	var result domain.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("redis: decode scan: %w", err)
	}
	return result, nil
}

// SetSession stores the session counters alongside the scan snapshot.
func (sc *SnapshotCache) SetSession(ctx context.Context, snap domain.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := sc.rdb.Set(ctx, sessionKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set session: %w", err)
	}
	return nil
}

// GetSession retrieves the session counters. It returns domain.ErrNotFound
// when none have been stored.
func (sc *SnapshotCache) GetSession(ctx context.Context) (domain.SessionSnapshot, error) {
	data, err := sc.rdb.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SessionSnapshot{}, domain.ErrNotFound
		}
		return domain.SessionSnapshot{}, fmt.Errorf("redis: get session: %w", err)
	}
	var snap domain.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("redis: decode session: %w", err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
