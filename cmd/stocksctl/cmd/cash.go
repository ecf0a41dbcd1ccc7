package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LLkaia/family-budget/internal/service/stocks"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <account-id> <amount>",
	Short: "Credit cash to an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runDeposit,
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <account-id> <amount>",
	Short: "Debit cash from an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runWithdraw,
}

var dividendCmd = &cobra.Command{
	Use:   "dividend <account-id> <symbol> <per-share> <quantity>",
	Short: "Record a dividend payout",
	Args:  cobra.ExactArgs(4),
	RunE:  runDividend,
}

var (
	cashFee string
	cashTax string
	cashAt  string
)

func init() {
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(dividendCmd)

	for _, c := range []*cobra.Command{depositCmd, withdrawCmd, dividendCmd} {
		c.Flags().StringVar(&cashFee, "fee", "0", "broker fee")
		c.Flags().StringVar(&cashAt, "at", "", "value date, RFC3339 or YYYY-MM-DD (default now)")
	}
	dividendCmd.Flags().StringVar(&cashTax, "tax", "0", "withheld tax, recorded but not deducted")
}

func cashRequest(args []string) (stocks.CashRequest, error) {
	var req stocks.CashRequest

	id, err := parseUUID("account id", args[0])
	if err != nil {
		return req, err
	}
	amount, err := parseAmount("amount", args[1])
	if err != nil {
		return req, err
	}
	fee, err := parseAmount("fee", cashFee)
	if err != nil {
		return req, err
	}
	at, err := parseWhen(cashAt)
	if err != nil {
		return req, err
	}

	req = stocks.CashRequest{AccountID: id, Amount: amount, Fee: fee, PerformedAt: at}
	return req, nil
}

func runDeposit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req, err := cashRequest(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.svc.Deposit(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("balance: %s\n", formatMoney(acct.Balance, acct.Currency))
	return nil
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req, err := cashRequest(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.svc.Withdraw(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("balance: %s\n", formatMoney(acct.Balance, acct.Currency))
	return nil
}

func runDividend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseUUID("account id", args[0])
	if err != nil {
		return err
	}
	perShare, err := parseAmount("per-share", args[2])
	if err != nil {
		return err
	}
	quantity, err := parseQuantity(args[3])
	if err != nil {
		return err
	}
	fee, err := parseAmount("fee", cashFee)
	if err != nil {
		return err
	}
	tax, err := parseAmount("tax", cashTax)
	if err != nil {
		return err
	}
	at, err := parseWhen(cashAt)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.svc.RecordDividend(ctx, stocks.DividendRequest{
		AccountID:   id,
		Symbol:      args[1],
		PerShare:    perShare,
		Quantity:    quantity,
		Fee:         fee,
		Tax:         tax,
		PerformedAt: at,
	})
	if err != nil {
		return err
	}

	fmt.Printf("balance: %s\n", formatMoney(acct.Balance, acct.Currency))
	return nil
}
