package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

func TestRoutePath(t *testing.T) {
	plan := &models.RepairPlan{Parts: []models.PlanPart{{Name: "Ignition coil"}}}

	tests := []struct {
		name  string
		cases []models.RetrievedCase
		want  string
	}{
		{
			name:  "no cases",
			cases: nil,
			want:  models.PathClaudeOnly,
		},
		{
			name:  "top case has no plan",
			cases: []models.RetrievedCase{{Similarity: 0.95}},
			want:  models.PathClaudeOnly,
		},
		{
			name:  "high similarity with plan",
			cases: []models.RetrievedCase{{Similarity: 0.95, RepairPlan: plan}},
			want:  models.PathKBDirect,
		},
		{
			name:  "exactly at direct threshold",
			cases: []models.RetrievedCase{{Similarity: 0.70, RepairPlan: plan}},
			want:  models.PathKBDirect,
		},
		{
			name:  "just below direct threshold",
			cases: []models.RetrievedCase{{Similarity: 0.69, RepairPlan: plan}},
			want:  models.PathKBWithClaude,
		},
		{
			name:  "low similarity with plan",
			cases: []models.RetrievedCase{{Similarity: 0.55, RepairPlan: plan}},
			want:  models.PathKBWithClaude,
		},
		{
			name: "only top case decides",
			cases: []models.RetrievedCase{
				{Similarity: 0.60, RepairPlan: plan},
				{Similarity: 0.90, RepairPlan: plan},
			},
			want: models.PathKBWithClaude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routePath(tt.cases))
		})
	}
}
