// Package main provides the crankshaft CLI, a client for the diagnosis API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	apiURL  string
	token   string
	shopID  string

	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "crankshaft",
	Short: "Vehicle diagnosis from fault codes and symptoms",
	Long: `Crankshaft turns OBD-II fault codes and symptom descriptions into ranked
diagnoses with repair plans, using a knowledge base of confirmed repairs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.crankshaft.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "API bearer token")
	rootCmd.PersistentFlags().StringVar(&shopID, "shop", "", "Shop ID")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
