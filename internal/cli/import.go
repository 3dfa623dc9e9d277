package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/spf13/cobra"
)

const (
	csvFileEnv        = "YNAB_CSV_FILE"
	defaultImportFile = "transactions.csv"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		signedRefunds bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "import [CSV_FILE]",
		Short: "Import a ledger-ready CSV into YNAB",
		Long: `Import a Date,Payee,Memo,Amount,Category[,OrderId] file into the configured
YNAB account. Rows sharing an order id become one transaction, split by
category when needed. Transactions matching an existing one by amount within
the duplicate window are skipped. The file defaults to $` + csvFileEnv + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := importPath(args)

			ctx := cmd.Context()
			svc, err := a.service(ctx, false)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("csv file not found: %w", err)
			}
			defer f.Close()

			report, err := svc.Import(ctx, bufio.NewReader(f), importer.ImportOptions{SignedRefunds: signedRefunds})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(w, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&signedRefunds, "signed-refunds", false, "Keep positive amounts as inflows instead of negating them")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func importPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if v := os.Getenv(csvFileEnv); v != "" {
		return v
	}
	return defaultImportFile
}
