package handler

import (
	"errors"
	"net/http"

	"github.com/efreeman/polity/internal/model"
	"github.com/efreeman/polity/internal/scenario"
	"github.com/efreeman/polity/internal/service"
	"github.com/efreeman/polity/pkg/bdm"
)

// ScenarioHandler handles scenario CRUD endpoints.
type ScenarioHandler struct {
	svc *service.ForecastService
}

// NewScenarioHandler creates a ScenarioHandler.
func NewScenarioHandler(svc *service.ForecastService) *ScenarioHandler {
	return &ScenarioHandler{svc: svc}
}

type createScenarioRequest struct {
	Name     string             `json:"name"`
	Q        *float64           `json:"q,omitempty"`
	Rounds   int                `json:"rounds"`
	TieBreak string             `json:"tie_break,omitempty"`
	Actors   []model.ActorInput `json:"actors"`
}

// CreateScenario handles POST /api/v1/scenarios
func (h *ScenarioHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req createScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := 1.0
	if req.Q != nil {
		q = *req.Q
	}

	sc, err := h.svc.CreateScenario(r.Context(), req.Name, q, req.Rounds, req.TieBreak, req.Actors)
	if err != nil {
		if errors.Is(err, bdm.ErrInvalidConfig) || isRecordError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// ImportScenario handles POST /api/v1/scenarios/import: a CSV actor
// table in the request body plus query parameters for the run settings.
func (h *ScenarioHandler) ImportScenario(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	q := queryFloat(r, "q", 1.0)
	rounds := queryInt(r, "rounds", 1)
	tieBreak := r.URL.Query().Get("tie_break")

	defer r.Body.Close()
	records, err := scenario.ReadRecords(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inputs, err := scenario.InputsFromRecords(records)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := h.svc.CreateScenario(r.Context(), name, q, rounds, tieBreak, inputs)
	if err != nil {
		if errors.Is(err, bdm.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.svc.ListScenarios(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scenarios == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, scenarios)
}

// GetScenario handles GET /api/v1/scenarios/{id}
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.GetScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sc == nil {
		writeError(w, http.StatusNotFound, "scenario not found")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteScenario handles DELETE /api/v1/scenarios/{id}
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteScenario(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func isRecordError(err error) bool {
	var re *bdm.RecordError
	return errors.As(err, &re)
}
