package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"namcportal/internal/domain/models"
)

const (
	scoreKeyPrefix   = "engagement:score:" // engagement:score:{member_id}
	distributionKey  = "engagement:distribution"
	scoreTTL         = 6 * time.Hour
	distributionTTL  = 15 * time.Minute
)

// EngagementCache fronts the engagement score table with Redis so dashboard
// reads stay off Postgres between recomputes. A miss returns (nil, nil).
type EngagementCache struct {
	client *redis.Client
}

// NewEngagementCache creates a new cache around an existing client
func NewEngagementCache(client *redis.Client) *EngagementCache {
	return &EngagementCache{client: client}
}

// GetScore returns the cached snapshot for a member, nil on miss
func (c *EngagementCache) GetScore(ctx context.Context, memberID string) (*models.EngagementScore, error) {
	data, err := c.client.Get(ctx, scoreKeyPrefix+memberID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached score: %w", err)
	}

	var score models.EngagementScore
	if err := json.Unmarshal([]byte(data), &score); err != nil {
		return nil, fmt.Errorf("unmarshal cached score: %w", err)
	}

	return &score, nil
}

// SetScore caches a snapshot with TTL
func (c *EngagementCache) SetScore(ctx context.Context, score *models.EngagementScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	if err := c.client.Set(ctx, scoreKeyPrefix+score.MemberID, data, scoreTTL).Err(); err != nil {
		return fmt.Errorf("set cached score: %w", err)
	}

	return nil
}

// InvalidateScore drops the cached snapshot for a member
func (c *EngagementCache) InvalidateScore(ctx context.Context, memberID string) error {
	if err := c.client.Del(ctx, scoreKeyPrefix+memberID).Err(); err != nil {
		return fmt.Errorf("invalidate cached score: %w", err)
	}
	return nil
}

// GetDistribution returns the cached tier breakdown, nil on miss
func (c *EngagementCache) GetDistribution(ctx context.Context) ([]models.TierDistribution, error) {
	data, err := c.client.Get(ctx, distributionKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached distribution: %w", err)
	}

	var dist []models.TierDistribution
	if err := json.Unmarshal([]byte(data), &dist); err != nil {
		return nil, fmt.Errorf("unmarshal cached distribution: %w", err)
	}

	return dist, nil
}

// SetDistribution caches the tier breakdown with a short TTL
func (c *EngagementCache) SetDistribution(ctx context.Context, dist []models.TierDistribution) error {
	data, err := json.Marshal(dist)
	if err != nil {
		return fmt.Errorf("marshal distribution: %w", err)
	}

	if err := c.client.Set(ctx, distributionKey, data, distributionTTL).Err(); err != nil {
		return fmt.Errorf("set cached distribution: %w", err)
	}

	return nil
}
