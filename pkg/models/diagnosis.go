package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Synthesis paths. Selected once per run from the top retrieved case.
const (
	PathKBDirect     = "kb_direct"
	PathKBWithClaude = "kb_with_claude"
	PathClaudeOnly   = "claude_only"
)

// Diagnosis is one ranked output row of a diagnosis run.
type Diagnosis struct {
	Cause              string   `json:"cause"`
	Confidence         float64  `json:"confidence"`
	Reasoning          string   `json:"reasoning,omitempty"`
	PartsNeeded        []string `json:"parts_needed,omitempty"`
	LaborCategory      string   `json:"labor_category,omitempty"`
	LaborHours         float64  `json:"labor_hours,omitempty"`
	CommonMisdiagnosis string   `json:"common_misdiagnosis,omitempty"`
}

// DiagnosisResult is the complete output of one diagnosis run. The diagnosis
// list is sorted by confidence descending; the repair plan is built once and
// never mutated after return.
type DiagnosisResult struct {
	RunID           uuid.UUID    `json:"run_id"`
	Path            string       `json:"path"`
	Diagnoses       []Diagnosis  `json:"diagnoses"`
	RepairPlan      *RepairPlan  `json:"repair_plan,omitempty"`
	DiagnosticSteps []string     `json:"diagnostic_steps,omitempty"`
	Summary         string       `json:"summary,omitempty"`
	Registry        RegistryData `json:"registry"`
	LowConfidence   bool         `json:"low_confidence"`
	CreatedAt       time.Time    `json:"created_at"`
}

// TopDiagnosis returns the highest-confidence diagnosis, or nil when the
// list is empty.
func (r *DiagnosisResult) TopDiagnosis() *Diagnosis {
	if len(r.Diagnoses) == 0 {
		return nil
	}
	return &r.Diagnoses[0]
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
