package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LLkaia/family-budget/internal/quote"
)

var positionsCmd = &cobra.Command{
	Use:   "positions <account-id>",
	Short: "List open lots of an account, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositions,
}

var positionsPrices string

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.Flags().StringVar(&positionsPrices, "prices", "", "YAML price file; adds market value and unrealized gain columns")
}

func runPositions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseUUID("account id", args[0])
	if err != nil {
		return err
	}

	var quotes quote.Source
	if positionsPrices != "" {
		quotes, err = loadQuotes(positionsPrices)
		if err != nil {
			return err
		}
	}

	a, err := newApp(ctx, quotes)
	if err != nil {
		return err
	}
	defer a.Close()

	if quotes == nil {
		lots, err := a.svc.ListOpenPositions(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("%-26s  %-8s  %8s  %10s  %s\n", "LOT", "SYMBOL", "QTY", "ENTRY", "OPENED")
		for _, p := range lots {
			fmt.Printf("%-26s  %-8s  %8d  %10s  %s\n",
				p.ID, p.Symbol, p.QuantityActive, p.EntryPrice.StringFixed(4),
				p.OpenedAt.Format("2006-01-02"))
		}
		return nil
	}

	values, err := a.svc.PositionQuotes(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%-26s  %-8s  %8s  %10s  %10s  %12s  %12s\n",
		"LOT", "SYMBOL", "QTY", "ENTRY", "PRICE", "VALUE", "GAIN")
	for _, v := range values {
		fmt.Printf("%-26s  %-8s  %8d  %10s  %10s  %12s  %12s\n",
			v.ID, v.Symbol, v.QuantityActive, v.EntryPrice.StringFixed(4),
			v.Price.StringFixed(4), v.MarketValue.StringFixed(4),
			v.UnrealizedGain.StringFixed(4))
	}
	return nil
}

type pricesFile struct {
	Prices map[string]string `yaml:"prices"`
}

// loadQuotes reads a YAML file mapping symbols to prices into a static quote
// source, e.g.
//
//	prices:
//	  AAPL: "187.32"
func loadQuotes(path string) (*quote.Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prices file: %w", err)
	}

	var f pricesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prices file: %w", err)
	}
	return quote.NewStaticFromStrings(f.Prices)
}
