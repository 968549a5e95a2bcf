package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show diagnosis accuracy from recorded outcomes",
	RunE:  runStats,
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show this month's diagnosis usage for the shop",
	RunE:  runUsage,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stats, err := newAPIClient(cfg).Stats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	if stats.Total == 0 {
		fmt.Println("No outcomes recorded yet.")
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Overall accuracy: %.2f%% (%d/%d)\n", stats.Accuracy, stats.Correct, stats.Total)

	if len(stats.ByFaultCode) > 0 {
		fmt.Println()
		_, _ = bold.Println("By fault code")
		codes := make([]string, 0, len(stats.ByFaultCode))
		for code := range stats.ByFaultCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			cs := stats.ByFaultCode[code]
			fmt.Printf("  %-8s %6.2f%%  (%d/%d)\n", code, cs.Accuracy, cs.Correct, cs.Total)
		}
	}
	return nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	shop, err := cfg.requireShop()
	if err != nil {
		return err
	}

	usage, err := newAPIClient(cfg).Usage(context.Background(), shop)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(usage)
	}

	fmt.Printf("Tier: %s\n", usage.Tier)
	if usage.Limit < 0 {
		fmt.Printf("Used this month: %d (unlimited)\n", usage.UsedThisMonth)
		return nil
	}
	fmt.Printf("Used this month: %d of %d (%d remaining)\n", usage.UsedThisMonth, usage.Limit, usage.Remaining)
	fmt.Printf("Resets: %s\n", usage.ResetDate.Format("2006-01-02"))
	return nil
}
