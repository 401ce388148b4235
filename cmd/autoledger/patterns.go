package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect learned transaction patterns",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's learned patterns",
		RunE:  runPatternsList,
	}
	list.Flags().StringP("tenant", "t", "", "tenant (required)")
	_ = list.MarkFlagRequired("tenant")

	cmd.AddCommand(list)
	return cmd
}

func runPatternsList(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	patterns, err := store.ListPatterns(ctx, tenant)
	if err != nil {
		return fmt.Errorf("failed to list patterns: %w", err)
	}

	if len(patterns) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No patterns learned yet. Run 'autoledger discover' first."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Patterns for %s", tenant)))
	fmt.Println(cli.TableHeaderStyle.Render(
		fmt.Sprintf("%-20s %-10s %-12s %-8s %-6s %s",
			"VERB", "BANK", "REFERENCE", "SEEN", "CONF", "LAST SEEN")))

	for i := range patterns {
		p := &patterns[i]
		verb := p.VerbCompany
		if p.IsCompound {
			verb += cli.SubtleStyle.Render("*")
		}
		fmt.Printf("%-20s %-10s %-12s %-8d %-6.2f %s\n",
			truncate(verb, 20),
			p.BankAccount,
			truncate(p.ReferenceNumber, 12),
			p.Occurrences,
			p.Confidence,
			p.LastSeen.Format("2006-01-02"))
	}

	return nil
}
