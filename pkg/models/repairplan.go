package models

// Labor source tags.
const (
	LaborSourceKnowledgeBase = "knowledge_base"
	LaborSourceSynthesis     = "synthesis"
	LaborSourceLiveGuide     = "live_guide"
)

// PlanPart is one part entry in a repair plan. Conditional parts are only
// installed when the stated condition is met.
type PlanPart struct {
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	Quantity     int    `json:"quantity"`
	OEMPreferred bool   `json:"oem_preferred,omitempty"`
	Conditional  bool   `json:"conditional,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// Labor describes the labor estimate for a repair plan.
type Labor struct {
	Hours    float64 `json:"hours"`
	Category string  `json:"category,omitempty"`
	Source   string  `json:"source,omitempty"`
}

// Verification lists procedures to run before and after the repair.
type Verification struct {
	Before []string `json:"before,omitempty"`
	After  []string `json:"after,omitempty"`
}

// RepairPlan is an actionable plan attached to a diagnosis set. The JSON
// field names are the persisted contract between the case store and the
// engine; renaming any of them is a breaking change.
type RepairPlan struct {
	Parts        []PlanPart        `json:"parts,omitempty"`
	Labor        Labor             `json:"labor"`
	Tools        []string          `json:"tools,omitempty"`
	TorqueSpecs  map[string]string `json:"torque_specs,omitempty"`
	Verification Verification      `json:"verification"`
	SpecialNotes []string          `json:"special_notes,omitempty"`
}

// HasPart reports whether the plan already lists a part with the given name,
// compared case-insensitively.
func (p *RepairPlan) HasPart(name string) bool {
	for _, part := range p.Parts {
		if equalFold(part.Name, name) {
			return true
		}
	}
	return false
}
