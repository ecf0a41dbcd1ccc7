package stocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/id"
	"github.com/LLkaia/family-budget/internal/logging"
)

type CashRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	PerformedAt time.Time
}

type DividendRequest struct {
	AccountID   uuid.UUID
	Symbol      string
	PerShare    decimal.Decimal
	Quantity    int64
	Fee         decimal.Decimal
	Tax         decimal.Decimal
	PerformedAt time.Time
}

// Deposit credits amount minus fee to the account.
func (s *Service) Deposit(ctx context.Context, req CashRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if err := validateCash(req); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	account, err := s.moveCash(ctx, domain.KindDeposit, req)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	log.Info("deposit recorded",
		"account_id", account.ID,
		"amount", req.Amount,
		"fee", req.Fee,
		"balance", account.Balance,
	)

	return account, nil
}

// Withdraw debits amount plus fee from the account. A balance that would go
// negative rejects the whole operation with ErrInsufficientFunds.
func (s *Service) Withdraw(ctx context.Context, req CashRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if err := validateCash(req); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	account, err := s.moveCash(ctx, domain.KindWithdrawal, req)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	log.Info("withdrawal recorded",
		"account_id", account.ID,
		"amount", req.Amount,
		"fee", req.Fee,
		"balance", account.Balance,
	)

	return account, nil
}

// RecordDividend credits per_share x quantity minus fee for an instrument the
// account holds money in. Tax is recorded on the entry but settled outside
// the account balance.
func (s *Service) RecordDividend(ctx context.Context, req DividendRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if err := validateTrade(req.Quantity, req.PerShare, req.Fee, req.Tax); err != nil {
		return nil, fmt.Errorf("RecordDividend: %w", err)
	}

	symbol, err := s.resolveTradeSymbol(ctx, req.AccountID, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("RecordDividend: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RecordDividend: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("RecordDividend: %w", err)
	}

	entry := domain.NewEntry(id.New(), account.ID, domain.KindDividend, req.PerShare, req.Quantity, performedAtOrNow(req.PerformedAt))
	entry.Symbol = &symbol
	entry.Fee = domain.RoundMoney(req.Fee)
	entry.Tax = domain.RoundMoney(req.Tax)
	entry.CreatedAt = time.Now().UTC()

	if err := s.applyEntry(ctx, tx, account, entry); err != nil {
		return nil, fmt.Errorf("RecordDividend: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RecordDividend: commit: %w", err)
	}

	log.Info("dividend recorded",
		"account_id", account.ID,
		"symbol", symbol,
		"per_share", req.PerShare,
		"quantity", req.Quantity,
		"balance", account.Balance,
	)

	return account, nil
}

func validateCash(req CashRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("validateCash: %w", domain.ErrInvalidAmount)
	}
	if req.Fee.IsNegative() {
		return fmt.Errorf("validateCash: %w", domain.ErrInvalidFee)
	}
	return nil
}

// moveCash runs the shared deposit/withdrawal transaction. Cash entries carry
// the amount as unit price with quantity one.
func (s *Service) moveCash(ctx context.Context, kind domain.EntryKind, req CashRequest) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("moveCash: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("moveCash: %w", err)
	}

	entry := domain.NewEntry(id.New(), account.ID, kind, req.Amount, 1, performedAtOrNow(req.PerformedAt))
	entry.Fee = domain.RoundMoney(req.Fee)
	entry.CreatedAt = time.Now().UTC()

	if err := s.applyEntry(ctx, tx, account, entry); err != nil {
		return nil, fmt.Errorf("moveCash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("moveCash: commit: %w", err)
	}

	return account, nil
}

func performedAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
