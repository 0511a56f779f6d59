package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/gateway"
	"github.com/talentbase/talentbase/store"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReorderJobs(w http.ResponseWriter, r *http.Request) {
	var payload gateway.ReorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode reorder payload"))
		return
	}
	if len(payload.Order) == 0 {
		writeError(w, errors.Wrap(store.ErrValidation, "empty reorder payload"))
		return
	}

	if err := s.coordinator.ReorderJobs(r.Context(), payload.Order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCandidateStage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, errors.Wrapf(store.ErrValidation, "path id %q", r.PathValue("id")))
		return
	}

	var payload gateway.StagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode stage payload"))
		return
	}
	if !payload.Stage.Valid() {
		writeError(w, errors.Wrapf(store.ErrValidation, "candidate stage %q", payload.Stage))
		return
	}

	// Give the coordinator a rollback baseline before the optimistic apply.
	current, err := s.store.GetCandidate(id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.coordinator.ObserveCandidateStage(id, current.Stage)

	if err := s.coordinator.MoveCandidate(r.Context(), id, payload.Stage, payload.Author); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.store.GetCandidate(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, gateway.ErrSimulatedFailure):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: err.Error(),
			Code:  "simulated_failure",
		})
	case db.IsDatabaseClosed(err):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}
