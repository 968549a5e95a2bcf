package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// AppendOutcomeParams contains parameters for recording a confirmed outcome.
type AppendOutcomeParams struct {
	RunID          uuid.UUID
	PredictedCause string
	ActualCause    string
	WasCorrect     bool
	FaultCodes     []string
	PartsUsed      []string
	ActualHours    float64
	Notes          string
}

// AppendOutcome stores a technician-confirmed outcome record.
func (db *DB) AppendOutcome(ctx context.Context, params AppendOutcomeParams) (*models.OutcomeRecord, error) {
	if params.FaultCodes == nil {
		params.FaultCodes = []string{}
	}
	if params.PartsUsed == nil {
		params.PartsUsed = []string{}
	}

	var o models.OutcomeRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO outcomes (run_id, predicted_cause, actual_cause, was_correct, fault_codes, parts_used, actual_hours, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, run_id, predicted_cause, actual_cause, was_correct, fault_codes, parts_used, actual_hours, notes, created_at`,
		params.RunID, params.PredictedCause, params.ActualCause, params.WasCorrect,
		params.FaultCodes, params.PartsUsed, params.ActualHours, params.Notes,
	).Scan(
		&o.ID, &o.RunID, &o.PredictedCause, &o.ActualCause, &o.WasCorrect,
		&o.FaultCodes, &o.PartsUsed, &o.ActualHours, &o.Notes, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOutcomes returns all outcome records, oldest first.
func (db *DB) ListOutcomes(ctx context.Context) ([]models.OutcomeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, predicted_cause, actual_cause, was_correct, fault_codes, parts_used, actual_hours, notes, created_at
		 FROM outcomes
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.OutcomeRecord
	for rows.Next() {
		var o models.OutcomeRecord
		if err := rows.Scan(
			&o.ID, &o.RunID, &o.PredictedCause, &o.ActualCause, &o.WasCorrect,
			&o.FaultCodes, &o.PartsUsed, &o.ActualHours, &o.Notes, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
