package repository

import (
	"context"
	"encoding/json"

	"github.com/efreeman/polity/internal/model"
)

// ScenarioRepository defines scenario data operations.
type ScenarioRepository interface {
	Create(ctx context.Context, name string, q float64, rounds int, tieBreak string, actors json.RawMessage) (*model.Scenario, error)
	FindByID(ctx context.Context, id string) (*model.Scenario, error)
	List(ctx context.Context) ([]model.Scenario, error)
	Delete(ctx context.Context, id string) error
}

// RunRepository defines run and round data operations.
type RunRepository interface {
	Create(ctx context.Context, scenarioID string) (*model.Run, error)
	FindByID(ctx context.Context, id string) (*model.Run, error)
	ListByScenario(ctx context.Context, scenarioID string) ([]model.Run, error)
	SetStatus(ctx context.Context, runID, status string) error
	Complete(ctx context.Context, runID string, result json.RawMessage) error
	Fail(ctx context.Context, runID, message string) error
	AppendRound(ctx context.Context, round model.Round) error
	RoundsByRun(ctx context.Context, runID string) ([]model.Round, error)
}

// RunCache defines live run state operations (Redis).
type RunCache interface {
	SetLatestResult(ctx context.Context, scenarioID string, result json.RawMessage) error
	GetLatestResult(ctx context.Context, scenarioID string) (json.RawMessage, error)
	SetProgress(ctx context.Context, runID string, round int) error
	GetProgress(ctx context.Context, runID string) (int, error)
	ClearRun(ctx context.Context, runID string) error
}
