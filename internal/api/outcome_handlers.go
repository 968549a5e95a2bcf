package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/engine"
)

// handleRecordOutcome records a technician-confirmed outcome for a run.
func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	if _, err := s.getCurrentUser(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req struct {
		RunID       string   `json:"run_id"`
		ActualCause string   `json:"actual_cause"`
		WasCorrect  bool     `json:"was_correct"`
		PartsUsed   []string `json:"parts_used"`
		ActualHours float64  `json:"actual_hours"`
		Notes       string   `json:"notes"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	record, err := s.engine.RecordOutcome(r.Context(), engine.OutcomeInput{
		RunID:       runID,
		ActualCause: req.ActualCause,
		WasCorrect:  req.WasCorrect,
		PartsUsed:   req.PartsUsed,
		ActualHours: req.ActualHours,
		Notes:       req.Notes,
	})
	if err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record outcome")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// handleGetStats returns overall and per-fault-code diagnosis accuracy.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	if _, err := s.getCurrentUser(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	stats, err := s.engine.AccuracyStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
