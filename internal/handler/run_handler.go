package handler

import (
	"net/http"
	"strconv"

	"github.com/efreeman/polity/internal/service"
)

// RunHandler handles run endpoints.
type RunHandler struct {
	svc *service.ForecastService
}

// NewRunHandler creates a RunHandler.
func NewRunHandler(svc *service.ForecastService) *RunHandler {
	return &RunHandler{svc: svc}
}

// StartRun handles POST /api/v1/scenarios/{id}/runs. It executes the
// scenario's forecast to completion. A run that fails inside the model
// is still created; its status and error field carry the outcome.
func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.ExecuteRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "scenario not found")
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// ListRuns handles GET /api/v1/scenarios/{id}/runs
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListRuns(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// LatestResult handles GET /api/v1/scenarios/{id}/latest. It returns the
// cached most recent completed result for a scenario.
func (h *RunHandler) LatestResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LatestResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run for scenario")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetRun handles GET /api/v1/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// RunRounds handles GET /api/v1/runs/{id}/rounds
func (h *RunHandler) RunRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.svc.RunRounds(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rounds == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
