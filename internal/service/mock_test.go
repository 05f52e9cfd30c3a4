package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/efreeman/polity/internal/model"
)

type mockScenarioRepo struct {
	scenarios map[string]*model.Scenario
}

func newMockScenarioRepo() *mockScenarioRepo {
	return &mockScenarioRepo{scenarios: make(map[string]*model.Scenario)}
}

func (m *mockScenarioRepo) Create(_ context.Context, name string, q float64, rounds int, tieBreak string, actors json.RawMessage) (*model.Scenario, error) {
	s := &model.Scenario{
		ID:        fmt.Sprintf("scenario-%d", len(m.scenarios)+1),
		Name:      name,
		Q:         q,
		Rounds:    rounds,
		TieBreak:  tieBreak,
		Actors:    actors,
		CreatedAt: time.Now(),
	}
	m.scenarios[s.ID] = s
	return s, nil
}

func (m *mockScenarioRepo) FindByID(_ context.Context, id string) (*model.Scenario, error) {
	s, ok := m.scenarios[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockScenarioRepo) List(_ context.Context) ([]model.Scenario, error) {
	var result []model.Scenario
	for _, s := range m.scenarios {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockScenarioRepo) Delete(_ context.Context, id string) error {
	delete(m.scenarios, id)
	return nil
}

type mockRunRepo struct {
	runs   map[string]*model.Run
	rounds map[string][]model.Round
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{
		runs:   make(map[string]*model.Run),
		rounds: make(map[string][]model.Round),
	}
}

func (m *mockRunRepo) Create(_ context.Context, scenarioID string) (*model.Run, error) {
	r := &model.Run{
		ID:         fmt.Sprintf("run-%d", len(m.runs)+1),
		ScenarioID: scenarioID,
		Status:     model.RunStatusPending,
		CreatedAt:  time.Now(),
	}
	m.runs[r.ID] = r
	return r, nil
}

func (m *mockRunRepo) FindByID(_ context.Context, id string) (*model.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockRunRepo) ListByScenario(_ context.Context, scenarioID string) ([]model.Run, error) {
	var result []model.Run
	for _, r := range m.runs {
		if r.ScenarioID == scenarioID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRunRepo) SetStatus(_ context.Context, runID, status string) error {
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	r.Status = status
	return nil
}

func (m *mockRunRepo) Complete(_ context.Context, runID string, result json.RawMessage) error {
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	now := time.Now()
	r.Status = model.RunStatusCompleted
	r.Result = result
	r.FinishedAt = &now
	return nil
}

func (m *mockRunRepo) Fail(_ context.Context, runID, message string) error {
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	now := time.Now()
	r.Status = model.RunStatusFailed
	r.Error = message
	r.FinishedAt = &now
	return nil
}

func (m *mockRunRepo) AppendRound(_ context.Context, round model.Round) error {
	m.rounds[round.RunID] = append(m.rounds[round.RunID], round)
	return nil
}

func (m *mockRunRepo) RoundsByRun(_ context.Context, runID string) ([]model.Round, error) {
	return m.rounds[runID], nil
}

type mockRunCache struct {
	latest   map[string]json.RawMessage
	progress map[string]int
}

func newMockRunCache() *mockRunCache {
	return &mockRunCache{
		latest:   make(map[string]json.RawMessage),
		progress: make(map[string]int),
	}
}

func (m *mockRunCache) SetLatestResult(_ context.Context, scenarioID string, result json.RawMessage) error {
	m.latest[scenarioID] = result
	return nil
}

func (m *mockRunCache) GetLatestResult(_ context.Context, scenarioID string) (json.RawMessage, error) {
	return m.latest[scenarioID], nil
}

func (m *mockRunCache) SetProgress(_ context.Context, runID string, round int) error {
	m.progress[runID] = round
	return nil
}

func (m *mockRunCache) GetProgress(_ context.Context, runID string) (int, error) {
	return m.progress[runID], nil
}

func (m *mockRunCache) ClearRun(_ context.Context, runID string) error {
	delete(m.progress, runID)
	return nil
}

type recordedEvent struct {
	runID     string
	eventType string
	data      any
}

type mockBroadcaster struct {
	events []recordedEvent
}

func (m *mockBroadcaster) BroadcastRunEvent(runID, eventType string, data any) {
	m.events = append(m.events, recordedEvent{runID: runID, eventType: eventType, data: data})
}
