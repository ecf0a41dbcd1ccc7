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

type OpenPositionRequest struct {
	AccountID uuid.UUID
	Symbol    string
	Quantity  int64
	UnitPrice decimal.Decimal
	Fee       decimal.Decimal
	Tax       decimal.Decimal
	OpenedAt  time.Time
}

// OpenPosition buys a lot: it inserts the position and debits
// unit_price x quantity plus fee from the account in one transaction.
// Insufficient funds roll everything back; no lot, no ledger entry.
func (s *Service) OpenPosition(ctx context.Context, req OpenPositionRequest) (*domain.Position, error) {
	log := logging.FromContext(ctx)

	if err := validateTrade(req.Quantity, req.UnitPrice, req.Fee, req.Tax); err != nil {
		return nil, fmt.Errorf("OpenPosition: %w", err)
	}

	symbol, err := s.resolveTradeSymbol(ctx, req.AccountID, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("OpenPosition: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenPosition: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("OpenPosition: %w", err)
	}

	openedAt := performedAtOrNow(req.OpenedAt)
	now := time.Now().UTC()

	position := &domain.Position{
		ID:             id.New(),
		AccountID:      account.ID,
		Symbol:         symbol,
		QuantityActive: req.Quantity,
		EntryPrice:     domain.RoundMoney(req.UnitPrice),
		OpenedAt:       openedAt,
		CreatedAt:      now,
	}

	if err := s.positions.Create(ctx, tx, position); err != nil {
		return nil, fmt.Errorf("OpenPosition: %w", err)
	}

	entry := domain.NewEntry(id.New(), account.ID, domain.KindStockIn, req.UnitPrice, req.Quantity, openedAt)
	entry.Symbol = &position.Symbol
	entry.PositionID = &position.ID
	entry.Fee = domain.RoundMoney(req.Fee)
	entry.Tax = domain.RoundMoney(req.Tax)
	entry.CreatedAt = now

	if err := s.applyEntry(ctx, tx, account, entry); err != nil {
		return nil, fmt.Errorf("OpenPosition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("OpenPosition: commit: %w", err)
	}

	log.Info("position opened",
		"account_id", account.ID,
		"position_id", position.ID,
		"symbol", symbol,
		"quantity", req.Quantity,
		"unit_price", position.EntryPrice,
		"balance", account.Balance,
	)

	return position, nil
}
