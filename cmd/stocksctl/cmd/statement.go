package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LLkaia/family-budget/internal/domain"
)

var statementCmd = &cobra.Command{
	Use:   "statement <account-id>",
	Short: "Show the ledger of an account, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatement,
}

var (
	statementLimit  int
	statementOffset int
	statementFrom   string
)

func init() {
	rootCmd.AddCommand(statementCmd)
	statementCmd.Flags().IntVar(&statementLimit, "limit", 50, "page size")
	statementCmd.Flags().IntVar(&statementOffset, "offset", 0, "entries to skip")
	statementCmd.Flags().StringVar(&statementFrom, "from", "", "only entries on or after, RFC3339 or YYYY-MM-DD")
}

func runStatement(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseUUID("account id", args[0])
	if err != nil {
		return err
	}

	filter := domain.StatementFilter{Limit: statementLimit, Offset: statementOffset}
	if statementFrom != "" {
		from, err := parseWhen(statementFrom)
		if err != nil {
			return err
		}
		filter.From = &from
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, total, err := a.svc.Statement(ctx, id, filter)
	if err != nil {
		return err
	}

	fmt.Printf("%-16s  %-10s  %-8s  %8s  %10s  %8s  %8s  %12s\n",
		"DATE", "KIND", "SYMBOL", "QTY", "PRICE", "FEE", "TAX", "TOTAL")
	for _, e := range entries {
		symbol := ""
		if e.Symbol != nil {
			symbol = *e.Symbol
		}
		fmt.Printf("%-16s  %-10s  %-8s  %8d  %10s  %8s  %8s  %12s\n",
			e.PerformedAt.Format("2006-01-02 15:04"), e.Kind, symbol, e.Quantity,
			e.UnitPrice.StringFixed(4), e.Fee.StringFixed(2), e.Tax.StringFixed(2),
			e.TotalAmount.StringFixed(4))
	}
	fmt.Printf("\n%d of %d entries\n", len(entries), total)
	return nil
}
