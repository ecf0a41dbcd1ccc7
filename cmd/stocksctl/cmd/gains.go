package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gainsCmd = &cobra.Command{
	Use:   "gains <account-id>",
	Short: "Report realized gains per symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runGains,
}

func init() {
	rootCmd.AddCommand(gainsCmd)
}

func runGains(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseUUID("account id", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.svc.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	gains, total, err := a.svc.RealizedGains(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s  %8s  %12s  %12s  %8s  %12s\n",
		"SYMBOL", "SOLD", "PROCEEDS", "COST", "FEES", "REALIZED")
	for _, g := range gains {
		fmt.Printf("%-8s  %8d  %12s  %12s  %8s  %12s\n",
			g.Symbol, g.SharesSold, g.Proceeds.StringFixed(4), g.CostBasis.StringFixed(4),
			g.Fees.StringFixed(2), g.Realized.StringFixed(4))
	}
	fmt.Printf("\ntotal realized: %s\n", formatMoney(total, acct.Currency))
	return nil
}
