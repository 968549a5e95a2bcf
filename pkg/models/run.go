package models

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary is the durable record of one completed diagnosis run. Appending
// it to the run log is best-effort; the feedback loop later resolves run IDs
// against these records.
type RunSummary struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        *uuid.UUID      `json:"shop_id,omitempty"`
	Query         DiagnosticQuery `json:"query"`
	Path          string          `json:"path"`
	TopCause      string          `json:"top_cause,omitempty"`
	TopConfidence float64         `json:"top_confidence,omitempty"`
	Diagnoses     int             `json:"diagnoses"`
	Summary       string          `json:"summary,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
