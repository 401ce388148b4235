package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
	"github.com/autoledger/autoledger/internal/model"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict missing bookkeeping fields for pending transactions",
		Long: `Predict empty debit/credit accounts and reference codes for a batch
of transactions using the tenant's learned patterns.

Transactions are read as a JSON array from --input (or stdin with
--input -). Nothing is written back; predictions are display-only.`,
		RunE: runPredict,
	}

	cmd.Flags().StringP("tenant", "t", "", "tenant to predict for (required)")
	cmd.Flags().StringP("input", "i", "-", "JSON file with transactions (- for stdin)")
	cmd.Flags().Bool("json", false, "emit results as JSON")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runPredict(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	input, _ := cmd.Flags().GetString("input")
	asJSON, _ := cmd.Flags().GetBool("json")

	transactions, err := readTransactions(input)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No transactions to predict."))
		return nil
	}
	for i := range transactions {
		transactions[i].Tenant = tenant
	}

	ctx := cmd.Context()
	deps, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	results, err := deps.predictor.Predict(ctx, tenant, transactions)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	printPredictions(results)
	return nil
}

func readTransactions(input string) ([]model.Transaction, error) {
	var data []byte
	var err error

	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	var transactions []model.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	return transactions, nil
}

func printPredictions(results []model.PredictionResult) {
	predicted := 0

	fmt.Println(cli.TitleStyle.Render("Predictions"))
	for i := range results {
		r := &results[i]
		if len(r.Predictions) == 0 {
			continue
		}
		predicted++

		fmt.Printf("%s  %s\n",
			r.Transaction.Date.Format("2006-01-02"),
			truncate(r.Transaction.Description, 60))
		for _, p := range r.Predictions {
			fmt.Printf("    %s %s %s\n",
				cli.TableHeaderStyle.Render(string(p.Field)+":"),
				cli.SuccessStyle.Render(p.Value),
				cli.SubtleStyle.Render(fmt.Sprintf("(confidence %.2f)", p.Confidence)))
		}
	}

	if predicted == 0 {
		fmt.Println(cli.SubtleStyle.Render("  No fields could be predicted."))
		return
	}
	fmt.Printf("\n%d of %d transactions received predictions\n", predicted, len(results))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
