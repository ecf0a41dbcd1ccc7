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

type ClosePositionRequest struct {
	AccountID uuid.UUID
	Symbol    string
	Quantity  int64
	UnitPrice decimal.Decimal
	Fee       decimal.Decimal
	Tax       decimal.Decimal
	ClosedAt  time.Time
}

// ClosePositions sells quantity shares of symbol, consuming open lots oldest
// first. Each touched lot is drained and gets its own stock_out entry whose
// total is unit_price x consumed shares. The whole close succeeds or nothing
// is written: if the open lots cannot cover the quantity the operation fails
// with ErrInsufficientOpenQuantity before any write.
//
// The requested fee and tax are charged once per close, on the entry of the
// oldest touched lot; the remaining slices carry zero.
func (s *Service) ClosePositions(ctx context.Context, req ClosePositionRequest) error {
	log := logging.FromContext(ctx)

	if err := validateTrade(req.Quantity, req.UnitPrice, req.Fee, req.Tax); err != nil {
		return fmt.Errorf("ClosePositions: %w", err)
	}

	symbol, err := domain.NormalizeSymbol(req.Symbol)
	if err != nil {
		return fmt.Errorf("ClosePositions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ClosePositions: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		return fmt.Errorf("ClosePositions: %w", err)
	}

	open, err := s.positions.ListOpenForUpdate(ctx, tx, account.ID, symbol)
	if err != nil {
		return fmt.Errorf("ClosePositions: %w", err)
	}

	lots := make([]*domain.Position, len(open))
	for i := range open {
		lots[i] = &open[i]
	}

	fills, err := domain.MatchFIFO(lots, req.Quantity)
	if err != nil {
		return fmt.Errorf("ClosePositions: %w", err)
	}

	closedAt := performedAtOrNow(req.ClosedAt)
	now := time.Now().UTC()
	price := domain.RoundMoney(req.UnitPrice)

	for i, fill := range fills {
		if err := s.positions.Drain(ctx, tx, fill.Position.ID, fill.Quantity); err != nil {
			return fmt.Errorf("ClosePositions: %w", err)
		}

		entry := domain.NewEntry(id.New(), account.ID, domain.KindStockOut, price, fill.Quantity, closedAt)
		entry.Symbol = &symbol
		entry.PositionID = &fill.Position.ID
		entry.CreatedAt = now
		if i == 0 {
			entry.Fee = domain.RoundMoney(req.Fee)
			entry.Tax = domain.RoundMoney(req.Tax)
		}

		if err := s.applyEntry(ctx, tx, account, entry); err != nil {
			return fmt.Errorf("ClosePositions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ClosePositions: commit: %w", err)
	}

	log.Info("positions closed",
		"account_id", account.ID,
		"symbol", symbol,
		"quantity", req.Quantity,
		"unit_price", price,
		"lots_touched", len(fills),
		"balance", account.Balance,
	)

	return nil
}
