package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSynthesisOutput_PlainJSON(t *testing.T) {
	content := `{
		"diagnoses": [
			{"cause": "Failed ignition coil", "confidence": 0.8, "parts_needed": ["Ignition coil"]},
			{"cause": "Worn spark plug"}
		],
		"repair_plan": {
			"parts": [{"name": "Ignition coil", "quantity": 1}],
			"labor": {"hours": 1.5, "category": "engine_electrical"}
		},
		"diagnostic_steps": ["Swap coil between cylinders"],
		"summary": "Coil failure most likely."
	}`

	out, err := ParseSynthesisOutput(content)
	require.NoError(t, err)
	require.Len(t, out.Diagnoses, 2)
	assert.Equal(t, "Failed ignition coil", out.Diagnoses[0].Cause)
	require.NotNil(t, out.RepairPlan)
	assert.Equal(t, 1.5, out.RepairPlan.Labor.Hours)
	assert.Equal(t, "Coil failure most likely.", out.Summary)
}

func TestParseSynthesisOutput_MarkdownFences(t *testing.T) {
	content := "```json\n{\"diagnoses\": [{\"cause\": \"Vacuum leak\"}]}\n```"

	out, err := ParseSynthesisOutput(content)
	require.NoError(t, err)
	assert.Equal(t, "Vacuum leak", out.Diagnoses[0].Cause)
}

func TestParseSynthesisOutput_ProseAroundJSON(t *testing.T) {
	content := `Here is my diagnosis:

{"diagnoses": [{"cause": "Clogged fuel injector"}]}

Let me know if you need anything else.`

	out, err := ParseSynthesisOutput(content)
	require.NoError(t, err)
	assert.Equal(t, "Clogged fuel injector", out.Diagnoses[0].Cause)
}

func TestParseSynthesisOutput_BracesInsideStrings(t *testing.T) {
	content := `{"diagnoses": [{"cause": "ECU fault {code 0x42}", "reasoning": "escaped \" quote"}]}`

	out, err := ParseSynthesisOutput(content)
	require.NoError(t, err)
	assert.Equal(t, "ECU fault {code 0x42}", out.Diagnoses[0].Cause)
}

func TestParseSynthesisOutput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no JSON", "I cannot help with that."},
		{"unterminated object", `{"diagnoses": [`},
		{"no diagnoses key", `{"summary": "nothing found"}`},
		{"empty diagnoses", `{"diagnoses": []}`},
		{"diagnosis without cause", `{"diagnoses": [{"cause": "  "}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSynthesisOutput(tt.content)
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON_FirstTopLevelObject(t *testing.T) {
	content := `{"a": 1} {"b": 2}`
	assert.Equal(t, `{"a": 1}`, extractJSON(content))
}
