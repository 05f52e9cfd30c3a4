//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/efreeman/polity/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestLatestResultRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	scenarioID := "test-scenario-1"

	result := json.RawMessage(`{"initial_median":10,"initial_mean":6.78,"rounds":[]}`)

	if err := c.SetLatestResult(ctx, scenarioID, result); err != nil {
		t.Fatalf("set latest result: %v", err)
	}

	got, err := c.GetLatestResult(ctx, scenarioID)
	if err != nil {
		t.Fatalf("get latest result: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil result")
	}

	var fetched map[string]any
	json.Unmarshal(got, &fetched)
	if fetched["initial_median"].(float64) != 10 {
		t.Fatalf("result round-trip failed: %s", string(got))
	}
}

func TestLatestResultNotFound(t *testing.T) {
	c := setup(t)

	got, err := c.GetLatestResult(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("get missing result: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing result")
	}
}

func TestProgressLifecycle(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	runID := "test-run-1"

	round, err := c.GetProgress(ctx, runID)
	if err != nil {
		t.Fatalf("get progress before set: %v", err)
	}
	if round != 0 {
		t.Fatalf("expected 0 for unknown run, got %d", round)
	}

	if err := c.SetProgress(ctx, runID, 3); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	round, err = c.GetProgress(ctx, runID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if round != 3 {
		t.Fatalf("expected round 3, got %d", round)
	}

	if err := c.ClearRun(ctx, runID); err != nil {
		t.Fatalf("clear run: %v", err)
	}
	round, _ = c.GetProgress(ctx, runID)
	if round != 0 {
		t.Fatalf("expected 0 after clear, got %d", round)
	}
}
