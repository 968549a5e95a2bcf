package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

var (
	diagnoseYear     int
	diagnoseMake     string
	diagnoseModel    string
	diagnoseEngine   string
	diagnoseMileage  int
	diagnoseCodes    []string
	diagnoseSymptoms string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run a diagnosis for a vehicle",
	Long: `Run a diagnosis from fault codes and/or a symptom description.

Examples:
  crankshaft diagnose --make Honda --model Civic --year 2015 --code P0301
  crankshaft diagnose --make Ford --model F-150 --year 2019 \
      --symptoms "hard start when cold, rough idle" --mileage 98000`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseMake, "make", "", "Vehicle make (required)")
	diagnoseCmd.Flags().StringVar(&diagnoseModel, "model", "", "Vehicle model (required)")
	diagnoseCmd.Flags().IntVar(&diagnoseYear, "year", 0, "Model year")
	diagnoseCmd.Flags().StringVar(&diagnoseEngine, "engine", "", "Engine description, e.g. 1.5L turbo")
	diagnoseCmd.Flags().IntVar(&diagnoseMileage, "mileage", 0, "Odometer reading in miles")
	diagnoseCmd.Flags().StringSliceVar(&diagnoseCodes, "code", nil, "OBD-II fault code (repeatable)")
	diagnoseCmd.Flags().StringVar(&diagnoseSymptoms, "symptoms", "", "Free-text symptom description")

	_ = diagnoseCmd.MarkFlagRequired("make")
	_ = diagnoseCmd.MarkFlagRequired("model")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	shop, err := cfg.requireShop()
	if err != nil {
		return err
	}

	query := models.DiagnosticQuery{
		Year:     diagnoseYear,
		Make:     diagnoseMake,
		Model:    diagnoseModel,
		Engine:   diagnoseEngine,
		Mileage:  diagnoseMileage,
		DTCCodes: diagnoseCodes,
		Symptoms: diagnoseSymptoms,
	}

	var spin *spinner.Spinner
	if isatty.IsTerminal(os.Stderr.Fd()) && !jsonOutput {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" Diagnosing %s...", query.VehicleDescription())
		spin.Start()
	}

	result, err := newAPIClient(cfg).Diagnose(context.Background(), shop, query)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printDiagnosis(os.Stdout, result)
	return nil
}
