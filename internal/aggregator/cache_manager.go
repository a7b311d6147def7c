package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checklist-safety/internal/board"

	"go.uber.org/zap"
)

const (
	BoardCacheKey = "inspection-board:full"
	StatsCacheKey = "inspection-board:stats"
)

// CacheManager stores the last built board and its stats as JSON
type CacheManager struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheManager ttl <= 0 keeps entries until overwritten
func NewCacheManager(kv KVStore, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// SaveSnapshot writes the full board and the stats under separate keys
func (c *CacheManager) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	full, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal board snapshot: %w", err)
	}
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal board stats: %w", err)
	}

	if err := c.kv.Set(ctx, BoardCacheKey, string(full), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	if err := c.kv.Set(ctx, StatsCacheKey, string(stats), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated inspection board cache",
		zap.String("key", BoardCacheKey),
		zap.Int("size", len(full)),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}

// LoadSnapshot returns ErrCacheMiss when nothing is cached
func (c *CacheManager) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	raw, err := c.kv.Get(ctx, BoardCacheKey)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board snapshot: %w", err)
	}
	return &snap, nil
}

// LoadStats returns ErrCacheMiss when nothing is cached
func (c *CacheManager) LoadStats(ctx context.Context) (*board.Stats, error) {
	raw, err := c.kv.Get(ctx, StatsCacheKey)
	if err != nil {
		return nil, err
	}
	var stats board.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board stats: %w", err)
	}
	return &stats, nil
}

// Invalidate drops both keys so the next read rebuilds the board
func (c *CacheManager) Invalidate(ctx context.Context) error {
	return c.kv.Del(ctx, BoardCacheKey, StatsCacheKey)
}
