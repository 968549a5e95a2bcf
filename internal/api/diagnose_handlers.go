package api

import (
	"net/http"

	"github.com/kamilpajak/crankshaft/internal/billing"
	"github.com/kamilpajak/crankshaft/internal/engine"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

// handleDiagnose runs a diagnosis for a shop, enforcing the shop's monthly
// usage limit.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.requireShopOwner(w, r)
	if !ok {
		return
	}

	if err := s.usageChecker.CheckLimit(r.Context(), sc.Shop.ID); err != nil {
		if billing.IsLimitExceeded(err) {
			writeError(w, http.StatusPaymentRequired, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check usage")
		return
	}

	var query models.DiagnosticQuery
	if err := readJSON(r, &query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.Run(r.Context(), query, &sc.Shop.ID)
	if err != nil {
		switch {
		case engine.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case engine.IsSynthesis(err):
			writeError(w, http.StatusBadGateway, "diagnosis synthesis failed")
		default:
			writeError(w, http.StatusInternalServerError, "diagnosis failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetRun returns a logged run, scoped to the shop that owns it.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.requireShopOwner(w, r)
	if !ok {
		return
	}

	runID, err := parseRunID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.db.GetRunByID(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if run == nil || run.ShopID == nil || *run.ShopID != sc.Shop.ID {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, run)
}
