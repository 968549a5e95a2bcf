package engine

import "github.com/kamilpajak/crankshaft/pkg/models"

// Routing thresholds.
const (
	// directSimilarity is the floor above which a stored repair plan is
	// trusted without fresh synthesis.
	directSimilarity = 0.70
	// candidateSimilarity is the floor for a case to appear as a kb_direct
	// diagnosis.
	candidateSimilarity = 0.50
	// maxDirectDiagnoses caps the kb_direct diagnosis list.
	maxDirectDiagnoses = 5
)

// routePath selects the synthesis strategy for a run. It is a pure function
// of the top retrieved case's similarity and repair-plan presence: a
// high-similarity match with a ready-made plan skips synthesis entirely, a
// moderate match keeps the stored plan but lets the model adjust it, and no
// plan at all requires full synthesis.
func routePath(cases []models.RetrievedCase) string {
	if len(cases) == 0 || cases[0].RepairPlan == nil {
		return models.PathClaudeOnly
	}
	if cases[0].Similarity >= directSimilarity {
		return models.PathKBDirect
	}
	return models.PathKBWithClaude
}
