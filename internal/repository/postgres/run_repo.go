package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/efreeman/polity/internal/model"
)

// RunRepo handles run and round database operations.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts a new pending run for a scenario.
func (r *RunRepo) Create(ctx context.Context, scenarioID string) (*model.Run, error) {
	var run model.Run
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO runs (scenario_id, status)
		 VALUES ($1, $2)
		 RETURNING id, scenario_id, status, created_at`,
		scenarioID, model.RunStatusPending,
	).Scan(&run.ID, &run.ScenarioID, &run.Status, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &run, nil
}

// FindByID returns a run, or nil when it does not exist.
func (r *RunRepo) FindByID(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	var errMsg, result sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, scenario_id, status, error, result, created_at, finished_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.ScenarioID, &run.Status, &errMsg, &result, &run.CreatedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	run.Error = errMsg.String
	if result.Valid {
		run.Result = json.RawMessage(result.String)
	}
	return &run, nil
}

// ListByScenario returns a scenario's runs, newest first.
func (r *RunRepo) ListByScenario(ctx context.Context, scenarioID string) ([]model.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scenario_id, status, error, result, created_at, finished_at
		 FROM runs WHERE scenario_id = $1 ORDER BY created_at DESC`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var errMsg, result sql.NullString
		if err := rows.Scan(&run.ID, &run.ScenarioID, &run.Status, &errMsg, &result, &run.CreatedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Error = errMsg.String
		if result.Valid {
			run.Result = json.RawMessage(result.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SetStatus updates a run's status.
func (r *RunRepo) SetStatus(ctx context.Context, runID, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $1 WHERE id = $2`, status, runID)
	if err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	return nil
}

// Complete marks a run finished and stores the full result document.
func (r *RunRepo) Complete(ctx context.Context, runID string, result json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $1, result = $2, finished_at = now() WHERE id = $3`,
		model.RunStatusCompleted, result, runID)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// Fail marks a run failed with a message.
func (r *RunRepo) Fail(ctx context.Context, runID, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $1, error = $2, finished_at = now() WHERE id = $3`,
		model.RunStatusFailed, message, runID)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// AppendRound inserts one resolved round for a run.
func (r *RunRepo) AppendRound(ctx context.Context, round model.Round) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO run_rounds (run_id, round, offers, median, mean, positions, risk_aversions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		round.RunID, round.Round, round.Offers, round.Median, round.Mean, round.Positions, round.RiskAversions)
	if err != nil {
		return fmt.Errorf("append round: %w", err)
	}
	return nil
}

// RoundsByRun returns a run's rounds in order.
func (r *RunRepo) RoundsByRun(ctx context.Context, runID string) ([]model.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, round, offers, median, mean, positions, risk_aversions, created_at
		 FROM run_rounds WHERE run_id = $1 ORDER BY round`, runID)
	if err != nil {
		return nil, fmt.Errorf("rounds by run: %w", err)
	}
	defer rows.Close()

	var rounds []model.Round
	for rows.Next() {
		var rd model.Round
		if err := rows.Scan(&rd.RunID, &rd.Round, &rd.Offers, &rd.Median, &rd.Mean, &rd.Positions, &rd.RiskAversions, &rd.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}
