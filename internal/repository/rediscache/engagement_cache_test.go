package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"namcportal/internal/domain/models"
)

func newTestCache(t *testing.T) (*EngagementCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewEngagementCache(client), mr
}

func TestEngagementCache_ScoreRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	score := &models.EngagementScore{
		MemberID:   "member-1",
		Score:      72.5,
		Tier:       models.TierActive,
		EventCount: 14,
		WindowDays: 90,
		ComputedAt: time.Date(2026, 8, 1, 2, 15, 0, 0, time.UTC),
	}

	if err := cache.SetScore(ctx, score); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	got, err := cache.GetScore(ctx, "member-1")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if got == nil {
		t.Fatal("GetScore returned nil after SetScore")
	}
	if got.Score != score.Score || got.Tier != score.Tier || got.EventCount != score.EventCount {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, score)
	}
}

func TestEngagementCache_MissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.GetScore(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %+v", got)
	}
}

func TestEngagementCache_InvalidateScore(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	score := &models.EngagementScore{MemberID: "member-2", Score: 10, Tier: models.TierDormant}
	if err := cache.SetScore(ctx, score); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	if err := cache.InvalidateScore(ctx, "member-2"); err != nil {
		t.Fatalf("InvalidateScore: %v", err)
	}

	got, err := cache.GetScore(ctx, "member-2")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after invalidation, got %+v", got)
	}
}

func TestEngagementCache_ScoreExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	score := &models.EngagementScore{MemberID: "member-3", Score: 55, Tier: models.TierActive}
	if err := cache.SetScore(ctx, score); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	mr.FastForward(scoreTTL + time.Minute)

	got, err := cache.GetScore(ctx, "member-3")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if got != nil {
		t.Errorf("expected expiry after TTL, got %+v", got)
	}
}

func TestEngagementCache_DistributionRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	dist := []models.TierDistribution{
		{Tier: models.TierDormant, Count: 40},
		{Tier: models.TierCasual, Count: 25},
		{Tier: models.TierActive, Count: 20},
		{Tier: models.TierChampion, Count: 5},
	}

	if err := cache.SetDistribution(ctx, dist); err != nil {
		t.Fatalf("SetDistribution: %v", err)
	}

	got, err := cache.GetDistribution(ctx)
	if err != nil {
		t.Fatalf("GetDistribution: %v", err)
	}
	if len(got) != len(dist) {
		t.Fatalf("got %d tiers, want %d", len(got), len(dist))
	}
	for i := range dist {
		if got[i] != dist[i] {
			t.Errorf("tier %d: got %+v, want %+v", i, got[i], dist[i])
		}
	}
}
