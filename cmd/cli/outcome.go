package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	outcomeRunID   string
	outcomeCause   string
	outcomeCorrect bool
	outcomeParts   []string
	outcomeHours   float64
	outcomeNotes   string
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record the confirmed repair outcome for a run",
	Long: `Record what actually fixed the vehicle after a diagnosis run. Confirmed
outcomes feed back into the knowledge base and sharpen future diagnoses.

Example:
  crankshaft outcome --run-id 7d4e... --cause "Failed ignition coil" \
      --correct --part "Ignition coil" --hours 1.4`,
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().StringVar(&outcomeRunID, "run-id", "", "Diagnosis run ID (required)")
	outcomeCmd.Flags().StringVar(&outcomeCause, "cause", "", "Confirmed root cause (required)")
	outcomeCmd.Flags().BoolVar(&outcomeCorrect, "correct", false, "The top diagnosis was correct")
	outcomeCmd.Flags().StringSliceVar(&outcomeParts, "part", nil, "Part actually used (repeatable)")
	outcomeCmd.Flags().Float64Var(&outcomeHours, "hours", 0, "Actual labor hours")
	outcomeCmd.Flags().StringVar(&outcomeNotes, "notes", "", "Technician notes")

	_ = outcomeCmd.MarkFlagRequired("run-id")
	_ = outcomeCmd.MarkFlagRequired("cause")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	record, err := newAPIClient(cfg).RecordOutcome(context.Background(), outcomeRequest{
		RunID:       outcomeRunID,
		ActualCause: outcomeCause,
		WasCorrect:  outcomeCorrect,
		PartsUsed:   outcomeParts,
		ActualHours: outcomeHours,
		Notes:       outcomeNotes,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("Outcome recorded for run %s\n", record.RunID)
	if record.WasCorrect {
		fmt.Println("Predicted cause confirmed.")
	} else {
		fmt.Printf("Predicted %q, actual %q.\n", record.PredictedCause, record.ActualCause)
	}
	return nil
}
