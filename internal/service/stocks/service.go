// Package stocks implements the accounting operations on stock accounts:
// cash movement, lot opening, FIFO-matched closing, and reporting. Every
// mutating operation runs in a single transaction that locks the account row
// first, so operations on one account are serialized by the database.
package stocks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/quote"
)

type accountRepo interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal) error
}

type instrumentRepo interface {
	Upsert(ctx context.Context, tx *sql.Tx, inst *domain.Instrument) error
	GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error)
	List(ctx context.Context, limit, offset int) ([]domain.Instrument, int, error)
}

type positionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, position *domain.Position) error
	ListOpenForUpdate(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, symbol string) ([]domain.Position, error)
	ListOpenByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Position, error)
	Drain(ctx context.Context, tx *sql.Tx, id string, by int64) error
}

type ledgerRepo interface {
	Append(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter domain.StatementFilter) ([]domain.LedgerEntry, int, error)
	ListClosures(ctx context.Context, accountID uuid.UUID) ([]domain.Closure, error)
}

type Service struct {
	accounts    accountRepo
	instruments instrumentRepo
	positions   positionRepo
	ledger      ledgerRepo
	quotes      quote.Source
	db          *sql.DB
}

func NewService(
	accounts accountRepo,
	instruments instrumentRepo,
	positions positionRepo,
	ledger ledgerRepo,
	quotes quote.Source,
	db *sql.DB,
) *Service {
	return &Service{
		accounts:    accounts,
		instruments: instruments,
		positions:   positions,
		ledger:      ledger,
		quotes:      quotes,
		db:          db,
	}
}

// applyEntry is the single write path for account money. It validates the
// entry's references, checks that the balance stays non-negative, appends the
// ledger row and persists the new balance inside tx. account.Balance is
// updated in place so successive entries in one transaction see the running
// balance.
func (s *Service) applyEntry(ctx context.Context, tx *sql.Tx, account *domain.Account, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("applyEntry: %w", err)
	}

	newBalance := account.Balance.Add(entry.CashDelta())
	if newBalance.IsNegative() {
		return fmt.Errorf("applyEntry: %s of %s on account %s: %w",
			entry.Kind, entry.TotalAmount, account.ID, domain.ErrInsufficientFunds)
	}

	if err := s.ledger.Append(ctx, tx, entry); err != nil {
		return fmt.Errorf("applyEntry: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance); err != nil {
		return fmt.Errorf("applyEntry: %w", err)
	}

	account.Balance = newBalance
	return nil
}

// resolveTradeSymbol normalizes the symbol and verifies the instrument exists
// and trades in the account's currency. Used by operations that bring money
// in or out against an instrument (open, dividend).
func (s *Service) resolveTradeSymbol(ctx context.Context, accountID uuid.UUID, raw string) (string, error) {
	symbol, err := domain.NormalizeSymbol(raw)
	if err != nil {
		return "", fmt.Errorf("resolveTradeSymbol: %w", err)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("resolveTradeSymbol: %w", err)
	}

	inst, err := s.instruments.GetBySymbol(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("resolveTradeSymbol: %w", err)
	}

	if inst.Currency != account.Currency {
		return "", fmt.Errorf("resolveTradeSymbol: %s trades in %s, account holds %s: %w",
			symbol, inst.Currency, account.Currency, domain.ErrCurrencyMismatch)
	}

	return symbol, nil
}

func validateTrade(quantity int64, unitPrice, fee, tax decimal.Decimal) error {
	if quantity <= 0 {
		return fmt.Errorf("validateTrade: %w", domain.ErrInvalidQuantity)
	}
	if !unitPrice.IsPositive() {
		return fmt.Errorf("validateTrade: %w", domain.ErrInvalidPrice)
	}
	if fee.IsNegative() {
		return fmt.Errorf("validateTrade: %w", domain.ErrInvalidFee)
	}
	if tax.IsNegative() {
		return fmt.Errorf("validateTrade: %w", domain.ErrInvalidTax)
	}
	return nil
}
