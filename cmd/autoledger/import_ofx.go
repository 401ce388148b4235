package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank transactions from OFX or QFX files exported from your bank.

The bank side of every imported transaction is booked on the account
code given with --account; the opposite side and reference stay empty
until predicted or entered manually.

Examples:
  autoledger import-ofx --tenant acme --account 1002 ~/Downloads/jan_2024.ofx
  autoledger import-ofx --tenant acme --account 1002 ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("tenant", "t", "", "tenant to import for (required)")
	cmd.Flags().StringP("account", "a", "", "ledger account code of the bank account (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	account, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	ctx := cmd.Context()
	deps, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	parser := ofx.NewParser(tenant, account)
	var allTransactions []model.Transaction

	bar := progressbar.Default(int64(len(allFiles)), "importing")
	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		txns, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse file",
				"file", filepath.Base(filePath),
				"error", err)
			continue
		}

		allTransactions = append(allTransactions, txns...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if len(allTransactions) == 0 {
		return fmt.Errorf("no transactions found in %d file(s)", len(allFiles))
	}

	if dryRun {
		fmt.Println(cli.WarningStyle.Render(
			fmt.Sprintf("Dry run: would import %d transactions", len(allTransactions))))
		return nil
	}

	// SQLite can report a transient lock when discovery runs alongside
	// an import; the write is idempotent so retrying is safe.
	err = common.WithRetry(ctx, func() error {
		return deps.store.SaveTransactions(ctx, allTransactions)
	}, common.RetryOptions{})
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	// New transactions change what discovery would learn; drop the
	// cached patterns so the next prediction reads fresh state.
	if err := deps.cache.Invalidate(ctx, tenant); err != nil {
		slog.Warn("Failed to invalidate pattern cache", "tenant", tenant, "error", err)
	}

	fmt.Println(cli.SuccessStyle.Render(
		fmt.Sprintf("Imported %d transactions from %d file(s)", len(allTransactions), len(allFiles))))
	return nil
}
