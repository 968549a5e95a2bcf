package models

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeRecord is a technician-confirmed ground-truth result for a prior
// diagnosis run. The predicted cause and fault codes are copied from the run
// at record time, not re-resolved later. Records are never mutated.
type OutcomeRecord struct {
	ID             uuid.UUID `json:"id"`
	RunID          uuid.UUID `json:"run_id"`
	PredictedCause string    `json:"predicted_cause"`
	ActualCause    string    `json:"actual_cause"`
	WasCorrect     bool      `json:"was_correct"`
	FaultCodes     []string  `json:"fault_codes,omitempty"`
	PartsUsed      []string  `json:"parts_used,omitempty"`
	ActualHours    float64   `json:"actual_hours,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FaultCodeStats is the accuracy breakdown for a single fault code.
type FaultCodeStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// AccuracyStats is derived on demand from the full outcome set; it is never
// stored.
type AccuracyStats struct {
	Total       int                       `json:"total"`
	Correct     int                       `json:"correct"`
	Accuracy    float64                   `json:"accuracy"`
	ByFaultCode map[string]FaultCodeStats `json:"by_fault_code"`
}
