package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/service/stocks"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage stock accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a stock account",
	Args:  cobra.NoArgs,
	RunE:  runAccountCreate,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts of an owner",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var accountShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Show one account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountShow,
}

var (
	accountOwner    string
	accountName     string
	accountCurrency string
	accountBalance  string
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountShowCmd)

	accountCmd.PersistentFlags().StringVar(&accountOwner, "owner", "", "owner UUID")
	accountCreateCmd.Flags().StringVar(&accountName, "name", "", "account name")
	accountCreateCmd.Flags().StringVar(&accountCurrency, "currency", "", "ISO 4217 code (defaults to DEFAULT_CURRENCY)")
	accountCreateCmd.Flags().StringVar(&accountBalance, "balance", "0", "opening balance")
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	owner, err := parseUUID("owner", accountOwner)
	if err != nil {
		return err
	}
	balance, err := parseAmount("balance", accountBalance)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	currency := accountCurrency
	if currency == "" {
		currency = a.cfg.DefaultCurrency
	}

	acct, err := a.svc.CreateAccount(ctx, stocks.CreateAccountRequest{
		OwnerID:        owner,
		Name:           accountName,
		Currency:       currency,
		OpeningBalance: balance,
	})
	if err != nil {
		return err
	}

	printAccount(acct)
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	owner, err := parseUUID("owner", accountOwner)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.svc.ListAccountsByOwner(ctx, owner)
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-20s  %-3s  %s\n", "ID", "NAME", "CCY", "BALANCE")
	for _, acct := range accounts {
		fmt.Printf("%-36s  %-20s  %-3s  %s\n",
			acct.ID, acct.Name, acct.Currency, formatMoney(acct.Balance, acct.Currency))
	}
	return nil
}

func runAccountShow(cmd *cobra.Command, args []string) error {
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

	printAccount(acct)
	return nil
}

func printAccount(acct *domain.Account) {
	fmt.Printf("ID:        %s\n", acct.ID)
	fmt.Printf("Owner:     %s\n", acct.OwnerID)
	fmt.Printf("Name:      %s\n", acct.Name)
	fmt.Printf("Currency:  %s\n", acct.Currency)
	fmt.Printf("Balance:   %s\n", formatMoney(acct.Balance, acct.Currency))
	fmt.Printf("Created:   %s\n", acct.CreatedAt.Format(time.RFC3339))
}
