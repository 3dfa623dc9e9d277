package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rocjay1/ynab-importer/internal/csvparse"
	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/spf13/cobra"
)

const defaultNormalizedFile = "amazon_ynab_ready.csv"

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		output     string
		noAI       bool
		noKeywords bool
	)

	cmd := &cobra.Command{
		Use:   "normalize INPUT_CSV",
		Short: "Convert an order export into a ledger-ready CSV",
		Long: `Read an order-history export, detect its date, amount, memo and order
columns, and write Date,Payee,Memo,Amount,Category,OrderId rows. Categories
come from the Gemini classifier when GEMINI_API_KEY is set, otherwise from
keyword rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx, !noAI)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer in.Close()

			out, err := svc.Normalize(ctx, bufio.NewReader(in), importer.NormalizeOptions{
				NoClassifier: noAI,
				NoKeywords:   noKeywords,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			if err := csvparse.WriteCSV(f, out.Rows); err != nil {
				f.Close()
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			w := cmd.OutOrStdout()
			success(w, "Wrote %d transaction(s) to %s", len(out.Rows), output)
			if out.SkippedInvalid > 0 {
				info(w, "Skipped %d row(s) without a readable date or amount.", out.SkippedInvalid)
			}
			if out.SkippedDuplicates > 0 {
				info(w, "Skipped %d duplicate row(s).", out.SkippedDuplicates)
			}
			printBreakdown(w, out.Breakdown)
			fmt.Fprintf(w, "\nNext: ynabimport import %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultNormalizedFile, "Output CSV path")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Skip AI categorization")
	cmd.Flags().BoolVar(&noKeywords, "no-keywords", false, "Skip keyword categorization")
	return cmd
}
