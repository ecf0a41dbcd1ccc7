package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LLkaia/family-budget/internal/domain"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Manage instrument reference data",
}

var symbolsLoadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Upsert instruments from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbolsLoad,
}

var symbolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known instruments",
	Args:  cobra.NoArgs,
	RunE:  runSymbolsList,
}

var (
	symbolsLimit  int
	symbolsOffset int
)

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.AddCommand(symbolsLoadCmd)
	symbolsCmd.AddCommand(symbolsListCmd)

	symbolsListCmd.Flags().IntVar(&symbolsLimit, "limit", 100, "page size")
	symbolsListCmd.Flags().IntVar(&symbolsOffset, "offset", 0, "instruments to skip")
}

type instrumentsFile struct {
	Instruments []struct {
		Symbol      string `yaml:"symbol"`
		Exchange    string `yaml:"exchange"`
		Currency    string `yaml:"currency"`
		Description string `yaml:"description"`
		Kind        string `yaml:"kind"`
	} `yaml:"instruments"`
}

func runSymbolsLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read instruments file: %w", err)
	}

	var f instrumentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse instruments file: %w", err)
	}

	instruments := make([]domain.Instrument, 0, len(f.Instruments))
	for _, in := range f.Instruments {
		instruments = append(instruments, domain.Instrument{
			Symbol:      in.Symbol,
			Exchange:    in.Exchange,
			Currency:    in.Currency,
			Description: in.Description,
			Kind:        in.Kind,
		})
	}

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.UpsertInstruments(ctx, instruments)
	if err != nil {
		return err
	}

	fmt.Printf("loaded %d instruments\n", n)
	return nil
}

func runSymbolsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	instruments, total, err := a.svc.ListInstruments(ctx, symbolsLimit, symbolsOffset)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s  %-10s  %-3s  %-14s  %s\n", "SYMBOL", "EXCHANGE", "CCY", "KIND", "DESCRIPTION")
	for _, in := range instruments {
		fmt.Printf("%-8s  %-10s  %-3s  %-14s  %s\n",
			in.Symbol, in.Exchange, in.Currency, in.Kind, in.Description)
	}
	fmt.Printf("\n%d of %d instruments\n", len(instruments), total)
	return nil
}
