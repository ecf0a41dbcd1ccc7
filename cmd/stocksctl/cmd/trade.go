package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LLkaia/family-budget/internal/service/stocks"
)

var openCmd = &cobra.Command{
	Use:   "open <account-id> <symbol> <quantity> <price>",
	Short: "Buy a lot of shares",
	Args:  cobra.ExactArgs(4),
	RunE:  runOpen,
}

var closeCmd = &cobra.Command{
	Use:   "close <account-id> <symbol> <quantity> <price>",
	Short: "Sell shares, consuming open lots oldest first",
	Args:  cobra.ExactArgs(4),
	RunE:  runClose,
}

var (
	tradeFee string
	tradeTax string
	tradeAt  string
)

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)

	for _, c := range []*cobra.Command{openCmd, closeCmd} {
		c.Flags().StringVar(&tradeFee, "fee", "0", "broker fee")
		c.Flags().StringVar(&tradeTax, "tax", "0", "withheld tax, recorded but not deducted")
		c.Flags().StringVar(&tradeAt, "at", "", "trade time, RFC3339 or YYYY-MM-DD (default now)")
	}
}

type tradeArgs struct {
	accountID uuid.UUID
	symbol    string
	quantity  int64
	unitPrice decimal.Decimal
	fee       decimal.Decimal
	tax       decimal.Decimal
	at        time.Time
}

func parseTrade(args []string) (tradeArgs, error) {
	var t tradeArgs
	var err error

	if t.accountID, err = parseUUID("account id", args[0]); err != nil {
		return t, err
	}
	t.symbol = args[1]
	if t.quantity, err = parseQuantity(args[2]); err != nil {
		return t, err
	}
	if t.unitPrice, err = parseAmount("price", args[3]); err != nil {
		return t, err
	}
	if t.fee, err = parseAmount("fee", tradeFee); err != nil {
		return t, err
	}
	if t.tax, err = parseAmount("tax", tradeTax); err != nil {
		return t, err
	}
	if t.at, err = parseWhen(tradeAt); err != nil {
		return t, err
	}
	return t, nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	t, err := parseTrade(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	pos, err := a.svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: t.accountID,
		Symbol:    t.symbol,
		Quantity:  t.quantity,
		UnitPrice: t.unitPrice,
		Fee:       t.fee,
		Tax:       t.tax,
		OpenedAt:  t.at,
	})
	if err != nil {
		return err
	}

	fmt.Printf("opened lot %s: %d %s @ %s\n",
		pos.ID, pos.QuantityActive, pos.Symbol, pos.EntryPrice.StringFixed(4))
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	t, err := parseTrade(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: t.accountID,
		Symbol:    t.symbol,
		Quantity:  t.quantity,
		UnitPrice: t.unitPrice,
		Fee:       t.fee,
		Tax:       t.tax,
		ClosedAt:  t.at,
	})
	if err != nil {
		return err
	}

	fmt.Printf("closed %d %s @ %s\n", t.quantity, t.symbol, t.unitPrice.StringFixed(4))
	return nil
}
