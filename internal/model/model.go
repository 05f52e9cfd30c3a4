package model

import (
	"encoding/json"
	"time"
)

// Run statuses.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Scenario is a stored forecasting problem: the actor table plus the
// simulation parameters it is run with.
type Scenario struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Q         float64         `json:"q"`
	Rounds    int             `json:"rounds"`
	TieBreak  string          `json:"tie_break"` // scholz, least_change
	Actors    json.RawMessage `json:"actors"`    // []ActorInput
	CreatedAt time.Time       `json:"created_at"`
}

// ActorInput is one row of a scenario's actor table.
type ActorInput struct {
	Name       string  `json:"name"`
	Capability float64 `json:"capability"`
	Salience   float64 `json:"salience"`
	Position   float64 `json:"position"`
}

// Run is one execution of a scenario.
type Run struct {
	ID         string          `json:"id"`
	ScenarioID string          `json:"scenario_id"`
	Status     string          `json:"status"` // pending, running, completed, failed
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"` // bdm.RunResult
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Round is one persisted bargaining round of a run.
type Round struct {
	RunID         string          `json:"run_id"`
	Round         int             `json:"round"`
	Offers        json.RawMessage `json:"offers"`
	Median        float64         `json:"median"`
	Mean          float64         `json:"mean"`
	Positions     json.RawMessage `json:"positions"`
	RiskAversions json.RawMessage `json:"risk_aversions"`
	CreatedAt     time.Time       `json:"created_at"`
}
