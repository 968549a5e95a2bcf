package engine

import (
	"fmt"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// mergePlans reconciles a knowledge-store repair plan with synthesis output
// on the kb_with_claude path. Parts the synthesis step suggests that the
// stored plan lacks are appended as conditional items; labor hours take the
// larger (more conservative) of the two sources, with an attribution note.
// Tools, torque specs, and verification steps keep the stored plan's values;
// the synthesis equivalents are discarded. That asymmetry is a known
// simplification carried over from the stored plan's higher provenance.
func mergePlans(existing, fresh *models.RepairPlan) *models.RepairPlan {
	merged := copyPlan(existing)
	if fresh == nil {
		return merged
	}

	for _, part := range fresh.Parts {
		if part.Name == "" || merged.HasPart(part.Name) {
			continue
		}
		part.Conditional = true
		if part.Condition == "" {
			part.Condition = "Suggested during synthesis; verify need before replacing"
		}
		merged.Parts = append(merged.Parts, part)
	}

	if fresh.Labor.Hours > merged.Labor.Hours {
		merged.SpecialNotes = append(merged.SpecialNotes, fmt.Sprintf(
			"Labor estimate raised from %.1f to %.1f hours based on synthesis",
			merged.Labor.Hours, fresh.Labor.Hours))
		merged.Labor.Hours = fresh.Labor.Hours
		merged.Labor.Source = models.LaborSourceSynthesis
	}

	return merged
}

// copyPlan deep-copies a repair plan so a run never mutates stored case data.
func copyPlan(plan *models.RepairPlan) *models.RepairPlan {
	if plan == nil {
		return &models.RepairPlan{}
	}

	out := &models.RepairPlan{
		Labor: plan.Labor,
		Verification: models.Verification{
			Before: append([]string(nil), plan.Verification.Before...),
			After:  append([]string(nil), plan.Verification.After...),
		},
	}
	out.Parts = append([]models.PlanPart(nil), plan.Parts...)
	out.Tools = append([]string(nil), plan.Tools...)
	out.SpecialNotes = append([]string(nil), plan.SpecialNotes...)
	if plan.TorqueSpecs != nil {
		out.TorqueSpecs = make(map[string]string, len(plan.TorqueSpecs))
		for k, v := range plan.TorqueSpecs {
			out.TorqueSpecs[k] = v
		}
	}
	return out
}
