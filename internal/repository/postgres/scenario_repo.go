package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/efreeman/polity/internal/model"
)

// ScenarioRepo handles scenario database operations.
type ScenarioRepo struct {
	db *sql.DB
}

// NewScenarioRepo creates a ScenarioRepo.
func NewScenarioRepo(db *sql.DB) *ScenarioRepo {
	return &ScenarioRepo{db: db}
}

// Create inserts a new scenario with its actor table.
func (r *ScenarioRepo) Create(ctx context.Context, name string, q float64, rounds int, tieBreak string, actors json.RawMessage) (*model.Scenario, error) {
	var s model.Scenario
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO scenarios (name, q, rounds, tie_break, actors)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, q, rounds, tie_break, actors, created_at`,
		name, q, rounds, tieBreak, actors,
	).Scan(&s.ID, &s.Name, &s.Q, &s.Rounds, &s.TieBreak, &s.Actors, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create scenario: %w", err)
	}
	return &s, nil
}

// FindByID returns a scenario, or nil when it does not exist.
func (r *ScenarioRepo) FindByID(ctx context.Context, id string) (*model.Scenario, error) {
	var s model.Scenario
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, q, rounds, tie_break, actors, created_at
		 FROM scenarios WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Q, &s.Rounds, &s.TieBreak, &s.Actors, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find scenario: %w", err)
	}
	return &s, nil
}

// List returns all scenarios, newest first.
func (r *ScenarioRepo) List(ctx context.Context) ([]model.Scenario, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, q, rounds, tie_break, actors, created_at
		 FROM scenarios ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []model.Scenario
	for rows.Next() {
		var s model.Scenario
		if err := rows.Scan(&s.ID, &s.Name, &s.Q, &s.Rounds, &s.TieBreak, &s.Actors, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

// Delete removes a scenario and, via cascade, its runs.
func (r *ScenarioRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}
