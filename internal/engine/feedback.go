package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/database"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Seed values for cases learned from confirmed outcomes. A single confirmed
// repair is real evidence but not yet a track record, so the base confidence
// starts modest while the success rate reflects the one known outcome.
const (
	learnedBaseConfidence = 0.6
	learnedSuccessRate    = 1.0
)

// OutcomeInput is the technician's report on how a diagnosis actually
// resolved.
type OutcomeInput struct {
	RunID       uuid.UUID
	ActualCause string
	WasCorrect  bool
	PartsUsed   []string
	ActualHours float64
	Notes       string
}

// RecordOutcome persists a confirmed repair outcome against an earlier run
// and feeds it back into the case corpus. The run must exist: an outcome
// with no run to anchor it cannot carry the predicted cause or the original
// fault codes forward.
func (e *Engine) RecordOutcome(ctx context.Context, input OutcomeInput) (*models.OutcomeRecord, error) {
	if e.outcomes == nil {
		return nil, fmt.Errorf("outcome store not configured")
	}
	if strings.TrimSpace(input.ActualCause) == "" {
		return nil, &ValidationError{Reason: "actual cause is required"}
	}

	run, err := e.runs.GetRunByID(ctx, input.RunID)
	if err != nil {
		return nil, fmt.Errorf("looking up run %s: %w", input.RunID, err)
	}
	if run == nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("run %s not found", input.RunID)}
	}

	record, err := e.outcomes.AppendOutcome(ctx, database.AppendOutcomeParams{
		RunID:          input.RunID,
		PredictedCause: run.TopCause,
		ActualCause:    input.ActualCause,
		WasCorrect:     input.WasCorrect,
		FaultCodes:     run.Query.DTCCodes,
		PartsUsed:      input.PartsUsed,
		ActualHours:    input.ActualHours,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("recording outcome: %w", err)
	}

	// Growing the corpus is best-effort; the outcome record is already
	// durable and must not be rolled back over a learning failure.
	e.learnFromOutcome(ctx, run, record)
	return record, nil
}

// learnFromOutcome turns a confirmed outcome into fresh knowledge-store
// cases, one per fault code on the original query, so the next diagnosis of
// the same code on the same vehicle finds the confirmed cause directly.
func (e *Engine) learnFromOutcome(ctx context.Context, run *models.RunSummary, record *models.OutcomeRecord) {
	if len(record.FaultCodes) == 0 {
		return
	}

	query := run.Query
	var embedding []float32
	if e.embedder != nil {
		vector, err := e.embedder.Embed(ctx, query.SearchText())
		if err != nil {
			log.Printf("feedback: embedding learned case failed, storing without vector: %v", err)
		} else {
			embedding = vector
		}
	}

	successRate := learnedSuccessRate
	for _, code := range record.FaultCodes {
		params := database.InsertCaseParams{
			FaultCode:      code,
			Make:           &query.Make,
			Model:          &query.Model,
			Cause:          record.ActualCause,
			BaseConfidence: learnedBaseConfidence,
			SuccessRate:    &successRate,
			PartsNeeded:    record.PartsUsed,
			LaborHours:     record.ActualHours,
			Source:         models.CaseSourceConfirmed,
			Embedding:      embedding,
		}
		if query.Year > 0 {
			params.YearFrom = &query.Year
			params.YearTo = &query.Year
		}
		if query.Engine != "" {
			params.Engine = &query.Engine
		}
		if _, err := e.cases.InsertCase(ctx, params); err != nil {
			log.Printf("feedback: failed to store learned case for %s: %v", code, err)
		}
	}
}

// AccuracyStats aggregates recorded outcomes into overall and per-fault-code
// accuracy figures. Percentages are rounded to two decimals.
func (e *Engine) AccuracyStats(ctx context.Context) (*models.AccuracyStats, error) {
	if e.outcomes == nil {
		return nil, fmt.Errorf("outcome store not configured")
	}

	records, err := e.outcomes.ListOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}

	stats := &models.AccuracyStats{
		ByFaultCode: make(map[string]models.FaultCodeStats),
	}
	for _, r := range records {
		stats.Total++
		if r.WasCorrect {
			stats.Correct++
		}
		for _, code := range r.FaultCodes {
			fc := stats.ByFaultCode[code]
			fc.Total++
			if r.WasCorrect {
				fc.Correct++
			}
			stats.ByFaultCode[code] = fc
		}
	}

	stats.Accuracy = percent(stats.Correct, stats.Total)
	for code, fc := range stats.ByFaultCode {
		fc.Accuracy = percent(fc.Correct, fc.Total)
		stats.ByFaultCode[code] = fc
	}
	return stats, nil
}

func percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}
