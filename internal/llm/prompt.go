package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert automotive diagnostic technician. Given a vehicle, its fault codes, and reported symptoms, produce a ranked list of probable causes and an actionable repair plan.

When similar historical cases are provided, weight them heavily: they encode confirmed repairs for this fault code and vehicle. When an existing repair plan is provided, adjust it rather than inventing a new one. Recall and complaint data may point at known component failures for this vehicle.

Respond with ONLY a JSON object in this exact structure, no prose before or after:
{
  "diagnoses": [
    {
      "cause": "Specific probable cause",
      "confidence": 0.0,
      "reasoning": "Why this cause fits the codes and symptoms",
      "parts_needed": ["part name"],
      "labor_category": "engine|electrical|exhaust|suspension|brakes|hvac|general",
      "labor_hours": 0.0,
      "common_misdiagnosis": "What this is often mistaken for, if anything"
    }
  ],
  "repair_plan": {
    "parts": [{"name": "", "position": "", "quantity": 1, "oem_preferred": false}],
    "labor": {"hours": 0.0, "category": ""},
    "tools": [""],
    "torque_specs": {"fastener": "spec"},
    "verification": {"before": [""], "after": [""]}
  },
  "diagnostic_steps": ["Step to verify before replacing parts"],
  "summary": "One-paragraph summary for the technician"
}

Order diagnoses from most to least likely. Recommend verification steps before expensive part swaps.`

// BuildPrompt renders the synthesis user prompt from the input context.
func BuildPrompt(input SynthesisInput) string {
	var sb strings.Builder

	q := input.Query
	sb.WriteString(fmt.Sprintf("## Vehicle\n%s", q.VehicleDescription()))
	if q.Mileage > 0 {
		sb.WriteString(fmt.Sprintf(", %d miles", q.Mileage))
	}
	sb.WriteString("\n\n")

	if len(q.DTCCodes) > 0 {
		sb.WriteString(fmt.Sprintf("## Fault Codes\n%s\n\n", strings.Join(q.DTCCodes, ", ")))
	}
	if q.Symptoms != "" {
		sb.WriteString(fmt.Sprintf("## Symptoms\n%s\n\n", q.Symptoms))
	}

	if len(input.Cases) > 0 {
		sb.WriteString("## Similar Historical Cases\n\n")
		for i, c := range input.Cases {
			if i >= 5 {
				sb.WriteString(fmt.Sprintf("... and %d more cases\n", len(input.Cases)-5))
				break
			}
			sb.WriteString(fmt.Sprintf("### %d. %s (similarity %.2f)\n", i+1, c.Cause, c.Similarity))
			sb.WriteString(fmt.Sprintf("Fault code: %s, base confidence %.2f", c.FaultCode, c.BaseConfidence))
			if c.SuccessRate != nil {
				sb.WriteString(fmt.Sprintf(", historical success rate %.2f", *c.SuccessRate))
			}
			sb.WriteString("\n")
			if len(c.PartsNeeded) > 0 {
				sb.WriteString(fmt.Sprintf("Parts: %s\n", strings.Join(c.PartsNeeded, ", ")))
			}
			sb.WriteString("\n")
		}
	}

	if len(input.Registry.Recalls) > 0 {
		sb.WriteString("## Open Recalls\n")
		for i, r := range input.Registry.Recalls {
			if i >= 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", r.Component, truncate(r.Summary, 300)))
		}
		sb.WriteString("\n")
	}

	if len(input.Registry.Complaints) > 0 {
		sb.WriteString("## Owner Complaints\n")
		for i, c := range input.Registry.Complaints {
			if i >= 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Component, truncate(c.Summary, 300)))
		}
		sb.WriteString("\n")
	}

	if input.ExistingPlan != nil {
		sb.WriteString("## Existing Repair Plan (adjust, do not replace)\n")
		for _, p := range input.ExistingPlan.Parts {
			sb.WriteString(fmt.Sprintf("- Part: %s x%d\n", p.Name, p.Quantity))
		}
		sb.WriteString(fmt.Sprintf("- Labor: %.1f hours (%s)\n\n",
			input.ExistingPlan.Labor.Hours, input.ExistingPlan.Labor.Category))
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
