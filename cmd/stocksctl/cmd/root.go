package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LLkaia/family-budget/internal/config"
	"github.com/LLkaia/family-budget/internal/logging"
	"github.com/LLkaia/family-budget/internal/quote"
	"github.com/LLkaia/family-budget/internal/repository"
	"github.com/LLkaia/family-budget/internal/service/stocks"
)

var rootCmd = &cobra.Command{
	Use:   "stocksctl",
	Short: "Operate stock accounts, lots and the cash ledger",
	Long: `stocksctl is the operator CLI for the stock accounting service.

It provides commands for:
  - Creating stock accounts and moving cash in and out
  - Opening lots and closing them oldest first
  - Recording dividend payouts with withheld tax
  - Listing open lots, ledger statements and realized gains
  - Loading instrument reference data from YAML files
  - Applying database migrations

Connection settings come from the environment, see DATABASE_URL.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the dependencies a subcommand needs. Each invocation is a
// separate process, so it is built fresh in every RunE and closed on return.
type app struct {
	cfg *config.Config
	db  *sql.DB
	svc *stocks.Service
}

func newApp(ctx context.Context, quotes quote.Source) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init("stocksctl", cfg.LogLevel, cfg.AppEnv)

	db, err := repository.Connect(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return nil, err
	}

	if quotes == nil {
		quotes = quote.NewStatic()
	}
	svc := stocks.NewService(
		repository.NewAccountRepository(db),
		repository.NewInstrumentRepository(db),
		repository.NewPositionRepository(db),
		repository.NewLedgerRepository(db),
		quotes,
		db,
	)
	return &app{cfg: cfg, db: db, svc: svc}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

func parseUUID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, raw, err)
	}
	return id, nil
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s %q: %w", name, raw, err)
	}
	return d, nil
}

func parseQuantity(raw string) (int64, error) {
	q, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", raw, err)
	}
	return q, nil
}

// parseWhen accepts RFC3339 or a bare YYYY-MM-DD day. Empty means now.
func parseWhen(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: want RFC3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}

// formatMoney renders an amount with the display conventions of its currency,
// e.g. $1,234.50. Unknown codes fall back to a plain decimal.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}
