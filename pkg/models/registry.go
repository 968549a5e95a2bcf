package models

// Recall is one safety recall entry from the vehicle registry.
type Recall struct {
	CampaignNumber string `json:"campaign_number,omitempty"`
	Component      string `json:"component,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Remedy         string `json:"remedy,omitempty"`
}

// Complaint is one owner complaint entry from the vehicle registry.
type Complaint struct {
	Component   string `json:"component,omitempty"`
	Summary     string `json:"summary,omitempty"`
	FailureMile int    `json:"failure_mileage,omitempty"`
}

// RegistryData bundles recall and complaint data for one vehicle. The two
// lists are fetched independently; either may be empty when its fetch failed.
type RegistryData struct {
	Recalls    []Recall    `json:"recalls"`
	Complaints []Complaint `json:"complaints"`
}

// Empty reports whether neither recalls nor complaints are present.
func (d RegistryData) Empty() bool {
	return len(d.Recalls) == 0 && len(d.Complaints) == 0
}

// LaborEstimate is the result of a live labor-time guide lookup.
type LaborEstimate struct {
	Hours float64 `json:"hours"`
	Notes string  `json:"notes,omitempty"`
}
