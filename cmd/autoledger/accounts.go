package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the per-tenant bank account reference table",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List account codes flagged as bank/cash accounts",
		RunE:  runAccountsList,
	}
	list.Flags().StringP("tenant", "t", "", "tenant (required)")
	_ = list.MarkFlagRequired("tenant")

	add := &cobra.Command{
		Use:   "add <code>",
		Short: "Flag an account code as a bank/cash account",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccountsAdd,
	}
	add.Flags().StringP("tenant", "t", "", "tenant (required)")
	add.Flags().StringP("name", "n", "", "display name for the account")
	_ = add.MarkFlagRequired("tenant")

	cmd.AddCommand(list)
	cmd.AddCommand(add)
	return cmd
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	codes, err := store.ListBankAccounts(ctx, tenant)
	if err != nil {
		return fmt.Errorf("failed to list bank accounts: %w", err)
	}

	if len(codes) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No bank accounts configured for this tenant."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Bank accounts for %s", tenant)))
	for _, code := range codes {
		fmt.Printf("  %s\n", code)
	}

	return nil
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	name, _ := cmd.Flags().GetString("name")
	code := args[0]

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.AddBankAccount(ctx, tenant, code, name); err != nil {
		return fmt.Errorf("failed to add bank account: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Flagged %s as a bank account for %s", code, tenant)))
	return nil
}
