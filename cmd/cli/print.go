package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// pathLabel maps internal path names to something a technician reads.
var pathLabel = map[string]string{
	models.PathKBDirect:     "knowledge base",
	models.PathKBWithClaude: "knowledge base + synthesis",
	models.PathClaudeOnly:   "synthesis",
}

func printDiagnosis(w io.Writer, r *models.DiagnosisResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	label := pathLabel[r.Path]
	if label == "" {
		label = r.Path
	}
	_, _ = dim.Fprintf(w, "Run %s (%s)\n", r.RunID, label)
	if r.Summary != "" {
		fmt.Fprintln(w, r.Summary)
	}
	fmt.Fprintln(w)

	for i, d := range r.Diagnoses {
		_, _ = bold.Fprintf(w, "%d. %s\n", i+1, d.Cause)
		printConfidenceBar(w, d.Confidence)
		if d.Reasoning != "" {
			fmt.Fprintf(w, "   %s\n", d.Reasoning)
		}
		if len(d.PartsNeeded) > 0 {
			fmt.Fprintf(w, "   Parts: %s\n", strings.Join(d.PartsNeeded, ", "))
		}
		if d.CommonMisdiagnosis != "" {
			_, _ = dim.Fprintf(w, "   Often misdiagnosed as: %s\n", d.CommonMisdiagnosis)
		}
		fmt.Fprintln(w)
	}

	if len(r.DiagnosticSteps) > 0 {
		_, _ = bold.Fprintln(w, "DIAGNOSTIC STEPS")
		for _, step := range r.DiagnosticSteps {
			fmt.Fprintf(w, "  - %s\n", step)
		}
		fmt.Fprintln(w)
	}

	if r.RepairPlan != nil {
		printPlan(w, r.RepairPlan)
	}

	printRegistry(w, r.Registry)

	if r.LowConfidence {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintln(w, "Low confidence: verify with the diagnostic steps before ordering parts.")
	}
}

func printPlan(w io.Writer, plan *models.RepairPlan) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = bold.Fprintln(w, "REPAIR PLAN")
	for _, part := range plan.Parts {
		line := part.Name
		if part.Quantity > 1 {
			line = fmt.Sprintf("%s x%d", line, part.Quantity)
		}
		if part.Position != "" {
			line = fmt.Sprintf("%s (%s)", line, part.Position)
		}
		fmt.Fprintf(w, "  - %s", line)
		if part.Conditional {
			_, _ = dim.Fprintf(w, " [if: %s]", part.Condition)
		}
		fmt.Fprintln(w)
	}

	if plan.Labor.Hours > 0 {
		fmt.Fprintf(w, "  Labor: %.1f hrs", plan.Labor.Hours)
		if plan.Labor.Category != "" {
			fmt.Fprintf(w, " (%s)", plan.Labor.Category)
		}
		fmt.Fprintln(w)
	}
	if len(plan.Tools) > 0 {
		fmt.Fprintf(w, "  Tools: %s\n", strings.Join(plan.Tools, ", "))
	}
	for bolt, spec := range plan.TorqueSpecs {
		fmt.Fprintf(w, "  Torque: %s %s\n", bolt, spec)
	}
	for _, check := range plan.Verification.Before {
		fmt.Fprintf(w, "  Before: %s\n", check)
	}
	for _, check := range plan.Verification.After {
		fmt.Fprintf(w, "  After: %s\n", check)
	}
	for _, note := range plan.SpecialNotes {
		_, _ = dim.Fprintf(w, "  Note: %s\n", note)
	}
	fmt.Fprintln(w)
}

func printRegistry(w io.Writer, data models.RegistryData) {
	if data.Empty() {
		return
	}
	bold := color.New(color.Bold)

	if len(data.Recalls) > 0 {
		red := color.New(color.FgRed)
		_, _ = bold.Fprintln(w, "OPEN RECALLS")
		for _, recall := range data.Recalls {
			_, _ = red.Fprintf(w, "  %s", recall.CampaignNumber)
			fmt.Fprintf(w, " %s: %s\n", recall.Component, recall.Summary)
		}
		fmt.Fprintln(w)
	}
	if len(data.Complaints) > 0 {
		fmt.Fprintf(w, "%d owner complaint(s) on file for this vehicle.\n\n", len(data.Complaints))
	}
}

func printConfidenceBar(w io.Writer, confidence float64) {
	const barWidth = 24
	percent := int(confidence * 100)
	filled := percent * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}

	var barColor *color.Color
	switch {
	case percent >= 70:
		barColor = color.New(color.FgGreen)
	case percent >= 40:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "   %3d%% ", percent)
	_, _ = barColor.Fprint(w, bar)
	fmt.Fprintln(w)
}
