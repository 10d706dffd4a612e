package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
)

const snapshotSummaryKeyPrefix = "inventory_health:summary"

// SnapshotSummary is the cached per-date digest served to reporting
// collaborators without hitting the warehouse.
type SnapshotSummary struct {
	SnapshotDate  int                         `json:"snapshot_date"`
	Records       int                         `json:"records"`
	Statuses      []domain.StatusCount        `json:"statuses"`
	Grades        []domain.GradeCount         `json:"grades"`
	Replenishment domain.ReplenishmentSummary `json:"replenishment"`
	ComputedAt    time.Time                   `json:"computed_at"`
}

type SnapshotCache interface {
	GetSummary(ctx context.Context, dateID int) (*SnapshotSummary, bool, error)
	SetSummary(ctx context.Context, summary *SnapshotSummary) error
	InvalidateDate(ctx context.Context, dateID int) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSnapshotCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) GetSummary(ctx context.Context, dateID int) (*SnapshotSummary, bool, error) {
	key := snapshotSummaryKey(dateID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary SnapshotSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode snapshot summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisSnapshotCache) SetSummary(ctx context.Context, summary *SnapshotSummary) error {
	key := snapshotSummaryKey(summary.SnapshotDate)
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode snapshot summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) InvalidateDate(ctx context.Context, dateID int) error {
	return c.client.Del(ctx, snapshotSummaryKey(dateID)).Err()
}

func (n *noopSnapshotCache) GetSummary(ctx context.Context, dateID int) (*SnapshotSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotCache) SetSummary(ctx context.Context, summary *SnapshotSummary) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateDate(ctx context.Context, dateID int) error {
	return nil
}

func snapshotSummaryKey(dateID int) string {
	return fmt.Sprintf("%s:%d", snapshotSummaryKeyPrefix, dateID)
}
