package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
	"github.com/autoledger/autoledger/internal/service"
)

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Learn transaction patterns from historical data",
		Long: `Scan a tenant's historical transactions and learn patterns that
associate counterparties with bookkeeping fields.

Full mode scans the complete lookback window; incremental mode only
scans transactions newer than the last analysis point.`,
		RunE: runDiscover,
	}

	cmd.Flags().StringP("tenant", "t", "", "tenant to analyze (required)")
	cmd.Flags().StringP("mode", "m", "incremental", "discovery mode (full, incremental)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	modeStr, _ := cmd.Flags().GetString("mode")

	var mode service.DiscoveryMode
	switch modeStr {
	case "full":
		mode = service.ModeFull
	case "incremental":
		mode = service.ModeIncremental
	default:
		return fmt.Errorf("invalid mode %q (expected full or incremental)", modeStr)
	}

	ctx := cmd.Context()
	deps, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	result, err := deps.discovery.Discover(ctx, tenant, mode)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	fmt.Println(cli.TitleStyle.Render("Discovery complete"))
	fmt.Printf("  Transactions analyzed: %d\n", result.TransactionsAnalyzed)
	fmt.Printf("  Patterns discovered:   %d\n", result.PatternsDiscovered)

	return nil
}
