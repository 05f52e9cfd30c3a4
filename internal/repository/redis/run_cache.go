package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis run state.
func latestResultKey(scenarioID string) string { return "scenario:" + scenarioID + ":latest" }
func progressKey(runID string) string          { return "run:" + runID + ":round" }

// SetLatestResult caches the most recent completed result for a scenario.
func (c *Client) SetLatestResult(ctx context.Context, scenarioID string, result json.RawMessage) error {
	return c.rdb.Set(ctx, latestResultKey(scenarioID), []byte(result), 0).Err()
}

// GetLatestResult retrieves the cached result for a scenario, nil on miss.
func (c *Client) GetLatestResult(ctx context.Context, scenarioID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, latestResultKey(scenarioID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest result: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetProgress records the last resolved round of an in-flight run.
func (c *Client) SetProgress(ctx context.Context, runID string, round int) error {
	return c.rdb.Set(ctx, progressKey(runID), round, 0).Err()
}

// GetProgress returns the last resolved round of a run, 0 when unknown.
func (c *Client) GetProgress(ctx context.Context, runID string) (int, error) {
	round, err := c.rdb.Get(ctx, progressKey(runID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get progress: %w", err)
	}
	return round, nil
}

// ClearRun removes the progress key once a run settles.
func (c *Client) ClearRun(ctx context.Context, runID string) error {
	return c.rdb.Del(ctx, progressKey(runID)).Err()
}
