package models

import (
	"time"

	"github.com/google/uuid"
)

// Case provenance tags. Authored cases ship with the knowledge base;
// confirmed cases are written back by the outcome feedback loop.
const (
	CaseSourceAuthored  = "authored"
	CaseSourceConfirmed = "technician_confirmed"
)

// RetrievedCase is one case-store record surfaced by retrieval.
//
// Similarity is assigned by the retrieval stage for the duration of a single
// query and is never persisted. The remaining field names form the contract
// between retrieval and scoring/merging.
type RetrievedCase struct {
	ID              uuid.UUID   `json:"id"`
	FaultCode       string      `json:"fault_code"`
	Make            *string     `json:"make,omitempty"`
	Model           *string     `json:"model,omitempty"`
	YearFrom        *int        `json:"year_from,omitempty"`
	YearTo          *int        `json:"year_to,omitempty"`
	Engine          *string     `json:"engine,omitempty"`
	Cause           string      `json:"cause"`
	Category        string      `json:"category,omitempty"`
	BaseConfidence  float64     `json:"base_confidence"`
	SuccessRate     *float64    `json:"success_rate,omitempty"`
	PartsNeeded     []string    `json:"parts_needed,omitempty"`
	LaborHours      float64     `json:"labor_hours,omitempty"`
	LaborCategory   string      `json:"labor_category,omitempty"`
	DiagnosticSteps []string    `json:"diagnostic_steps,omitempty"`
	RepairPlan      *RepairPlan `json:"repair_plan,omitempty"`
	Source          string      `json:"source,omitempty"`
	CreatedAt       time.Time   `json:"created_at,omitempty"`

	Similarity float64 `json:"similarity"`
}

// MatchesVehicle reports whether the case's vehicle scope exactly matches
// the query's make and model. Cases with no make/model are wildcards and do
// not count as a match here.
func (c RetrievedCase) MatchesVehicle(q DiagnosticQuery) bool {
	return c.Make != nil && c.Model != nil &&
		equalFold(*c.Make, q.Make) && equalFold(*c.Model, q.Model)
}

// MatchesMake reports whether the case is scoped to the query's make.
func (c RetrievedCase) MatchesMake(q DiagnosticQuery) bool {
	return c.Make != nil && equalFold(*c.Make, q.Make)
}
