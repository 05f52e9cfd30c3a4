//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/efreeman/polity/internal/model"
	"github.com/efreeman/polity/internal/testutil"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	m.Run()
}

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

var testActors = json.RawMessage(`[
	{"name":"A","capability":0.3,"salience":0.5,"position":0},
	{"name":"B","capability":0.2,"salience":0.4,"position":5},
	{"name":"C","capability":0.4,"salience":0.9,"position":10}
]`)

func createTestScenario(t *testing.T, repo *ScenarioRepo, name string) *model.Scenario {
	t.Helper()
	s, err := repo.Create(context.Background(), name, 1.0, 3, "scholz", testActors)
	if err != nil {
		t.Fatalf("create test scenario: %v", err)
	}
	return s
}

// --- ScenarioRepo Tests ---

func TestScenarioCreateAndFind(t *testing.T) {
	setup(t)
	repo := NewScenarioRepo(testDB)

	s := createTestScenario(t, repo, "balkans")
	if s.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if s.Name != "balkans" || s.Q != 1.0 || s.Rounds != 3 || s.TieBreak != "scholz" {
		t.Fatalf("unexpected scenario: %+v", s)
	}

	found, err := repo.FindByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.ID != s.ID {
		t.Fatalf("expected scenario %s, got %+v", s.ID, found)
	}

	var actors []model.ActorInput
	if err := json.Unmarshal(found.Actors, &actors); err != nil {
		t.Fatalf("unmarshal actors: %v", err)
	}
	if len(actors) != 3 || actors[2].Position != 10 {
		t.Fatalf("unexpected actors: %+v", actors)
	}
}

func TestScenarioFindMissing(t *testing.T) {
	setup(t)
	repo := NewScenarioRepo(testDB)

	found, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if found != nil {
		t.Fatal("expected nil for missing scenario")
	}
}

func TestScenarioList(t *testing.T) {
	setup(t)
	repo := NewScenarioRepo(testDB)

	createTestScenario(t, repo, "one")
	createTestScenario(t, repo, "two")

	scenarios, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(scenarios))
	}
}

func TestScenarioDeleteCascades(t *testing.T) {
	setup(t)
	scenarios := NewScenarioRepo(testDB)
	runs := NewRunRepo(testDB)

	s := createTestScenario(t, scenarios, "doomed")
	run, err := runs.Create(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := scenarios.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	found, err := runs.FindByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("find run after cascade: %v", err)
	}
	if found != nil {
		t.Fatal("expected run removed by cascade")
	}
}

// --- RunRepo Tests ---

func TestRunLifecycle(t *testing.T) {
	setup(t)
	scenarios := NewScenarioRepo(testDB)
	runs := NewRunRepo(testDB)
	ctx := context.Background()

	s := createTestScenario(t, scenarios, "balkans")
	run, err := runs.Create(ctx, s.ID)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.Status != model.RunStatusPending {
		t.Fatalf("expected pending, got %s", run.Status)
	}

	if err := runs.SetStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		t.Fatalf("set status: %v", err)
	}

	result := json.RawMessage(`{"initial_median":10,"initial_mean":6.78,"rounds":[]}`)
	if err := runs.Complete(ctx, run.ID, result); err != nil {
		t.Fatalf("complete: %v", err)
	}

	found, err := runs.FindByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Status != model.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", found.Status)
	}
	if found.Result == nil || found.FinishedAt == nil {
		t.Fatalf("expected result and finished_at: %+v", found)
	}
}

func TestRunFail(t *testing.T) {
	setup(t)
	scenarios := NewScenarioRepo(testDB)
	runs := NewRunRepo(testDB)
	ctx := context.Background()

	s := createTestScenario(t, scenarios, "balkans")
	run, _ := runs.Create(ctx, s.ID)

	if err := runs.Fail(ctx, run.ID, "all actors share the same danger level"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	found, _ := runs.FindByID(ctx, run.ID)
	if found.Status != model.RunStatusFailed {
		t.Fatalf("expected failed, got %s", found.Status)
	}
	if found.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestRunRounds(t *testing.T) {
	setup(t)
	scenarios := NewScenarioRepo(testDB)
	runs := NewRunRepo(testDB)
	ctx := context.Background()

	s := createTestScenario(t, scenarios, "balkans")
	run, _ := runs.Create(ctx, s.ID)

	for i := 1; i <= 2; i++ {
		err := runs.AppendRound(ctx, model.Round{
			RunID:         run.ID,
			Round:         i,
			Offers:        json.RawMessage(`[]`),
			Median:        10,
			Mean:          6.78,
			Positions:     json.RawMessage(`{"A":0,"B":0,"C":10}`),
			RiskAversions: json.RawMessage(`{"A":0.52,"B":0.5,"C":2}`),
		})
		if err != nil {
			t.Fatalf("append round %d: %v", i, err)
		}
	}

	rounds, err := runs.RoundsByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("rounds by run: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(rounds))
	}
	if rounds[0].Round != 1 || rounds[1].Round != 2 {
		t.Fatalf("rounds out of order: %+v", rounds)
	}
}

func TestListRunsByScenario(t *testing.T) {
	setup(t)
	scenarios := NewScenarioRepo(testDB)
	runs := NewRunRepo(testDB)
	ctx := context.Background()

	s1 := createTestScenario(t, scenarios, "one")
	s2 := createTestScenario(t, scenarios, "two")
	runs.Create(ctx, s1.ID)
	runs.Create(ctx, s1.ID)
	runs.Create(ctx, s2.ID)

	list, err := runs.ListByScenario(ctx, s1.ID)
	if err != nil {
		t.Fatalf("list by scenario: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list))
	}
}
