package weekly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	summaryKeyPrefix = "gitfit::summary"
	// summaries are rebuilt on every weekly run, two weeks covers a device
	// that misses a cycle
	summaryTTL = 14 * 24 * time.Hour
)

var ErrSummaryNotFound = errors.New("summary not found")

// SummaryCache keeps the latest weekly display summaries in redis so the UI
// collaborator can read them without touching the batch store.
type SummaryCache struct {
	redisClient *redis.Client
}

func NewSummaryCache(redisClient *redis.Client) *SummaryCache {
	return &SummaryCache{
		redisClient: redisClient,
	}
}

func summaryKey(userID, weekOfYear string) string {
	return fmt.Sprintf("%s::%s::%s", summaryKeyPrefix, userID, weekOfYear)
}

func summaryLatestKey(userID string) string {
	return fmt.Sprintf("%s::%s::latest", summaryKeyPrefix, userID)
}

func (c *SummaryCache) Set(ctx context.Context, summary DisplaySummary) error {
	summaryBytes, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	key := summaryKey(summary.UserID, summary.WeekOfYear)
	if cmd := c.redisClient.Set(ctx, key, summaryBytes, summaryTTL); cmd.Err() != nil {
		return fmt.Errorf("set summary: %w", cmd.Err())
	}
	if cmd := c.redisClient.Set(ctx, summaryLatestKey(summary.UserID), summary.WeekOfYear, summaryTTL); cmd.Err() != nil {
		return fmt.Errorf("set latest pointer: %w", cmd.Err())
	}

	return nil
}

func (c *SummaryCache) Get(ctx context.Context, userID, weekOfYear string) (DisplaySummary, error) {
	cmd := c.redisClient.Get(ctx, summaryKey(userID, weekOfYear))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return DisplaySummary{}, ErrSummaryNotFound
		}
		return DisplaySummary{}, fmt.Errorf("get summary: %w", err)
	}

	var summary DisplaySummary
	if err := json.Unmarshal([]byte(cmd.Val()), &summary); err != nil {
		return DisplaySummary{}, fmt.Errorf("unmarshal summary: %w", err)
	}

	return summary, nil
}

// GetLatest follows the per-user latest pointer.
func (c *SummaryCache) GetLatest(ctx context.Context, userID string) (DisplaySummary, error) {
	cmd := c.redisClient.Get(ctx, summaryLatestKey(userID))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return DisplaySummary{}, ErrSummaryNotFound
		}
		return DisplaySummary{}, fmt.Errorf("get latest pointer: %w", err)
	}

	return c.Get(ctx, userID, cmd.Val())
}
