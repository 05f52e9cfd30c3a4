package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/polity/internal/model"
	"github.com/efreeman/polity/internal/repository"
	"github.com/efreeman/polity/internal/scenario"
	"github.com/efreeman/polity/pkg/bdm"
)

// ForecastService orchestrates scenario storage and forecast execution:
// building the model, driving the bargaining rounds, persisting results,
// and streaming round events to subscribers.
type ForecastService struct {
	scenarioRepo repository.ScenarioRepository
	runRepo      repository.RunRepository
	cache        repository.RunCache
	broadcaster  Broadcaster
}

// NewForecastService creates a ForecastService.
func NewForecastService(
	scenarioRepo repository.ScenarioRepository,
	runRepo repository.RunRepository,
	cache repository.RunCache,
	broadcaster Broadcaster,
) *ForecastService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &ForecastService{
		scenarioRepo: scenarioRepo,
		runRepo:      runRepo,
		cache:        cache,
		broadcaster:  broadcaster,
	}
}

// CreateScenario validates the actor table by constructing a model from it
// and persists the scenario. Invalid tables never reach the database.
func (s *ForecastService) CreateScenario(ctx context.Context, name string, q float64, rounds int, tieBreak string, inputs []model.ActorInput) (*model.Scenario, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: scenario name required", bdm.ErrInvalidConfig)
	}
	if rounds < 0 {
		return nil, fmt.Errorf("%w: negative round count %d", bdm.ErrInvalidConfig, rounds)
	}
	if _, err := buildModel(inputs, q, tieBreak); err != nil {
		return nil, err
	}

	actors, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("marshal actors: %w", err)
	}
	sc, err := s.scenarioRepo.Create(ctx, name, q, rounds, tieBreak, actors)
	if err != nil {
		return nil, err
	}
	log.Info().Str("scenarioId", sc.ID).Str("name", name).Int("actors", len(inputs)).Msg("Scenario created")
	return sc, nil
}

// GetScenario returns a scenario, or nil when it does not exist.
func (s *ForecastService) GetScenario(ctx context.Context, id string) (*model.Scenario, error) {
	return s.scenarioRepo.FindByID(ctx, id)
}

// ListScenarios returns all stored scenarios.
func (s *ForecastService) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	return s.scenarioRepo.List(ctx)
}

// DeleteScenario removes a scenario and its runs.
func (s *ForecastService) DeleteScenario(ctx context.Context, id string) error {
	return s.scenarioRepo.Delete(ctx, id)
}

// ExecuteRun runs a scenario's forecast to completion, persisting each
// round and broadcasting round events. A model-level failure (degenerate
// danger profile, bad stored actors) is recorded on the run rather than
// returned: the run row is the durable record of the outcome.
func (s *ForecastService) ExecuteRun(ctx context.Context, scenarioID string) (*model.Run, error) {
	sc, err := s.scenarioRepo.FindByID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, nil
	}

	run, err := s.runRepo.Create(ctx, sc.ID)
	if err != nil {
		return nil, err
	}

	var inputs []model.ActorInput
	if err := json.Unmarshal(sc.Actors, &inputs); err != nil {
		return s.failRun(ctx, run, fmt.Errorf("unmarshal actors: %w", err))
	}
	m, err := buildModel(inputs, sc.Q, sc.TieBreak)
	if err != nil {
		return s.failRun(ctx, run, err)
	}

	if err := s.runRepo.SetStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, err
	}
	run.Status = model.RunStatusRunning

	result := &bdm.RunResult{
		InitialMedian: m.MedianPosition(),
		InitialMean:   m.MeanPosition(),
	}

	for round := 1; round <= sc.Rounds; round++ {
		s.broadcaster.BroadcastRunEvent(run.ID, EventRoundStarted, map[string]any{"round": round})

		if err := m.UpdateRiskAversions(); err != nil {
			return s.failRun(ctx, run, fmt.Errorf("round %d: %w", round, err))
		}
		offers := m.UpdatePositions()

		rr := bdm.RoundResult{
			Round:         round,
			Offers:        offers,
			Median:        m.MedianPosition(),
			Mean:          m.MeanPosition(),
			Positions:     make(map[string]float64, len(m.Actors())),
			RiskAversions: make(map[string]float64, len(m.Actors())),
		}
		for _, a := range m.Actors() {
			rr.Positions[a.Name] = a.Position
			rr.RiskAversions[a.Name] = a.RiskAversion
		}
		result.Rounds = append(result.Rounds, rr)

		if err := s.persistRound(ctx, run.ID, rr); err != nil {
			return s.failRun(ctx, run, err)
		}
		if err := s.cache.SetProgress(ctx, run.ID, round); err != nil {
			log.Warn().Err(err).Str("runId", run.ID).Msg("Failed to cache run progress")
		}
		s.broadcaster.BroadcastRunEvent(run.ID, EventOffersResolved, rr)
	}

	doc, err := json.Marshal(result)
	if err != nil {
		return s.failRun(ctx, run, fmt.Errorf("marshal result: %w", err))
	}
	if err := s.runRepo.Complete(ctx, run.ID, doc); err != nil {
		return nil, err
	}
	if err := s.cache.SetLatestResult(ctx, sc.ID, doc); err != nil {
		log.Warn().Err(err).Str("scenarioId", sc.ID).Msg("Failed to cache latest result")
	}
	if err := s.cache.ClearRun(ctx, run.ID); err != nil {
		log.Warn().Err(err).Str("runId", run.ID).Msg("Failed to clear run progress")
	}

	run.Status = model.RunStatusCompleted
	run.Result = doc
	s.broadcaster.BroadcastRunEvent(run.ID, EventRunCompleted, json.RawMessage(doc))
	log.Info().Str("runId", run.ID).Str("scenarioId", sc.ID).Int("rounds", sc.Rounds).Msg("Run completed")
	return run, nil
}

// GetRun returns a run, or nil when it does not exist.
func (s *ForecastService) GetRun(ctx context.Context, id string) (*model.Run, error) {
	return s.runRepo.FindByID(ctx, id)
}

// ListRuns returns a scenario's runs.
func (s *ForecastService) ListRuns(ctx context.Context, scenarioID string) ([]model.Run, error) {
	return s.runRepo.ListByScenario(ctx, scenarioID)
}

// RunRounds returns a run's persisted rounds in order.
func (s *ForecastService) RunRounds(ctx context.Context, runID string) ([]model.Round, error) {
	return s.runRepo.RoundsByRun(ctx, runID)
}

// LatestResult returns the cached latest completed result for a scenario,
// nil on a cache miss.
func (s *ForecastService) LatestResult(ctx context.Context, scenarioID string) (json.RawMessage, error) {
	return s.cache.GetLatestResult(ctx, scenarioID)
}

func (s *ForecastService) persistRound(ctx context.Context, runID string, rr bdm.RoundResult) error {
	offers, err := json.Marshal(rr.Offers)
	if err != nil {
		return fmt.Errorf("marshal offers: %w", err)
	}
	positions, err := json.Marshal(rr.Positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	risks, err := json.Marshal(rr.RiskAversions)
	if err != nil {
		return fmt.Errorf("marshal risk aversions: %w", err)
	}
	return s.runRepo.AppendRound(ctx, model.Round{
		RunID:         runID,
		Round:         rr.Round,
		Offers:        offers,
		Median:        rr.Median,
		Mean:          rr.Mean,
		Positions:     positions,
		RiskAversions: risks,
	})
}

func (s *ForecastService) failRun(ctx context.Context, run *model.Run, cause error) (*model.Run, error) {
	log.Warn().Err(cause).Str("runId", run.ID).Msg("Run failed")
	if err := s.runRepo.Fail(ctx, run.ID, cause.Error()); err != nil {
		return nil, err
	}
	if err := s.cache.ClearRun(ctx, run.ID); err != nil {
		log.Warn().Err(err).Str("runId", run.ID).Msg("Failed to clear run progress")
	}
	run.Status = model.RunStatusFailed
	run.Error = cause.Error()
	s.broadcaster.BroadcastRunEvent(run.ID, EventRunFailed, map[string]any{"error": cause.Error()})
	return run, nil
}

func buildModel(inputs []model.ActorInput, q float64, tieBreak string) (*bdm.Model, error) {
	return bdm.NewModelFromRecords(
		scenario.RecordsFromInputs(inputs),
		bdm.WithStatusQuoWeight(q),
		bdm.WithCompromiseTieBreak(scenario.TieBreakFromString(tieBreak)),
	)
}
