// Package llm provides the synthesis service client. Synthesis turns a
// diagnostic query plus retrieved context into ranked diagnoses and a repair
// plan. A transport error or unparsable response is fatal to the run on the
// paths that require synthesis.
package llm

import (
	"context"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// Response is a raw completion from a provider.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// SynthesisInput is the context handed to the synthesis service. ExistingPlan
// is only set on the kb_with_claude path, where the model adjusts the stored
// plan rather than inventing one.
type SynthesisInput struct {
	Query        models.DiagnosticQuery
	Cases        []models.RetrievedCase
	Registry     models.RegistryData
	ExistingPlan *models.RepairPlan
}

// SynthesisOutput is the parsed result of one synthesis call.
type SynthesisOutput struct {
	Diagnoses       []models.Diagnosis `json:"diagnoses"`
	RepairPlan      *models.RepairPlan `json:"repair_plan,omitempty"`
	DiagnosticSteps []string           `json:"diagnostic_steps,omitempty"`
	Summary         string             `json:"summary,omitempty"`
}

// Synthesizer is the synthesis service contract consumed by the engine.
type Synthesizer interface {
	Synthesize(ctx context.Context, input SynthesisInput) (*SynthesisOutput, error)
}
