package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
)

const (
	statsCachePrefix = "dashboard:"
	statsCacheTTL    = 60 * time.Second
)

// StatsCache keeps computed dashboard aggregates per user so the dashboard
// does not hit Mongo on every load. Entries are short lived and dropped
// whenever the user's data changes.
type StatsCache struct {
	client *Client
}

// NewStatsCache creates a new dashboard stats cache
func NewStatsCache(client *Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get retrieves cached dashboard stats for a user
func (c *StatsCache) Get(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	key := fmt.Sprintf("%s%s", statsCachePrefix, userID)

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	return &stats, nil
}

// Set caches dashboard stats for a user
func (c *StatsCache) Set(ctx context.Context, userID string, stats *domain.DashboardStats) error {
	key := fmt.Sprintf("%s%s", statsCachePrefix, userID)

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, statsCacheTTL).Err()
}

// Invalidate removes cached dashboard stats for a user
func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	key := fmt.Sprintf("%s%s", statsCachePrefix, userID)
	return c.client.rdb.Del(ctx, key).Err()
}
