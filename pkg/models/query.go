// Package models defines the domain types shared by the diagnostic engine,
// the persistence layer, and the API.
package models

import (
	"fmt"
	"strings"
)

// DiagnosticQuery is the immutable input to one diagnosis run.
type DiagnosticQuery struct {
	Year     int      `json:"year"`
	Make     string   `json:"make"`
	Model    string   `json:"model"`
	Engine   string   `json:"engine,omitempty"`
	Mileage  int      `json:"mileage,omitempty"`
	DTCCodes []string `json:"dtc_codes,omitempty"`
	Symptoms string   `json:"symptoms,omitempty"`
}

// VehicleDescription returns a human-readable vehicle string,
// e.g. "2018 Honda Civic 1.5L".
func (q DiagnosticQuery) VehicleDescription() string {
	desc := fmt.Sprintf("%d %s %s", q.Year, q.Make, q.Model)
	if q.Engine != "" {
		desc += " " + q.Engine
	}
	return desc
}

// SearchText builds the retrieval text representation: fault codes first,
// then symptoms, then vehicle descriptors.
func (q DiagnosticQuery) SearchText() string {
	parts := make([]string, 0, 3)
	if len(q.DTCCodes) > 0 {
		parts = append(parts, strings.Join(q.DTCCodes, " "))
	}
	if q.Symptoms != "" {
		parts = append(parts, q.Symptoms)
	}
	parts = append(parts, q.VehicleDescription())
	return strings.Join(parts, " ")
}
