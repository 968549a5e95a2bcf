package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

func storedPlan() *models.RepairPlan {
	return &models.RepairPlan{
		Parts: []models.PlanPart{
			{Name: "Ignition coil", Quantity: 1, OEMPreferred: true},
			{Name: "Spark plug", Quantity: 4},
		},
		Labor: models.Labor{
			Hours:    1.5,
			Category: "engine_electrical",
			Source:   models.LaborSourceKnowledgeBase,
		},
		Tools:       []string{"Torque wrench"},
		TorqueSpecs: map[string]string{"spark plug": "13 lb-ft"},
		Verification: models.Verification{
			Before: []string{"Record misfire counts"},
			After:  []string{"Clear codes and road test"},
		},
	}
}

func TestMergePlans_NilFreshKeepsStored(t *testing.T) {
	merged := mergePlans(storedPlan(), nil)

	assert.Len(t, merged.Parts, 2)
	assert.Equal(t, 1.5, merged.Labor.Hours)
	assert.Empty(t, merged.SpecialNotes)
}

func TestMergePlans_AppendsNewPartsAsConditional(t *testing.T) {
	fresh := &models.RepairPlan{
		Parts: []models.PlanPart{
			{Name: "Spark plug"},    // duplicate, case-insensitive dedupe
			{Name: "Fuel injector"}, // new
			{Name: ""},              // ignored
		},
	}

	merged := mergePlans(storedPlan(), fresh)

	require.Len(t, merged.Parts, 3)
	injector := merged.Parts[2]
	assert.Equal(t, "Fuel injector", injector.Name)
	assert.True(t, injector.Conditional)
	assert.NotEmpty(t, injector.Condition)

	// Stored parts keep their attributes untouched.
	assert.False(t, merged.Parts[0].Conditional)
	assert.True(t, merged.Parts[0].OEMPreferred)
}

func TestMergePlans_DedupeIsCaseInsensitive(t *testing.T) {
	fresh := &models.RepairPlan{
		Parts: []models.PlanPart{{Name: "IGNITION COIL"}},
	}

	merged := mergePlans(storedPlan(), fresh)
	assert.Len(t, merged.Parts, 2)
}

func TestMergePlans_TakesLargerLaborEstimate(t *testing.T) {
	fresh := &models.RepairPlan{
		Labor: models.Labor{Hours: 2.5},
	}

	merged := mergePlans(storedPlan(), fresh)

	assert.Equal(t, 2.5, merged.Labor.Hours)
	assert.Equal(t, models.LaborSourceSynthesis, merged.Labor.Source)
	require.Len(t, merged.SpecialNotes, 1)
	assert.Contains(t, merged.SpecialNotes[0], "1.5")
	assert.Contains(t, merged.SpecialNotes[0], "2.5")
}

func TestMergePlans_KeepsStoredLaborWhenLarger(t *testing.T) {
	fresh := &models.RepairPlan{
		Labor: models.Labor{Hours: 0.5},
	}

	merged := mergePlans(storedPlan(), fresh)

	assert.Equal(t, 1.5, merged.Labor.Hours)
	assert.Equal(t, models.LaborSourceKnowledgeBase, merged.Labor.Source)
	assert.Empty(t, merged.SpecialNotes)
}

func TestMergePlans_DiscardsSynthesisToolsAndSpecs(t *testing.T) {
	fresh := &models.RepairPlan{
		Tools:       []string{"Compression tester"},
		TorqueSpecs: map[string]string{"coil bolt": "7 lb-ft"},
		Verification: models.Verification{
			After: []string{"Check fuel trims"},
		},
	}

	merged := mergePlans(storedPlan(), fresh)

	assert.Equal(t, []string{"Torque wrench"}, merged.Tools)
	assert.Equal(t, map[string]string{"spark plug": "13 lb-ft"}, merged.TorqueSpecs)
	assert.Equal(t, []string{"Clear codes and road test"}, merged.Verification.After)
}

func TestCopyPlan_DeepCopy(t *testing.T) {
	original := storedPlan()
	copied := copyPlan(original)

	copied.Parts[0].Name = "Changed"
	copied.Tools[0] = "Changed"
	copied.TorqueSpecs["spark plug"] = "changed"
	copied.Verification.After[0] = "Changed"

	assert.Equal(t, "Ignition coil", original.Parts[0].Name)
	assert.Equal(t, "Torque wrench", original.Tools[0])
	assert.Equal(t, "13 lb-ft", original.TorqueSpecs["spark plug"])
	assert.Equal(t, "Clear codes and road test", original.Verification.After[0])
}

func TestCopyPlan_Nil(t *testing.T) {
	copied := copyPlan(nil)
	require.NotNil(t, copied)
	assert.Empty(t, copied.Parts)
}
