package stocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/logging"
)

const defaultInstrumentLimit = 100

// UpsertInstruments loads reference data in one transaction: new symbols are
// inserted, known symbols get their exchange, currency, description and kind
// refreshed. Returns the number of rows written.
func (s *Service) UpsertInstruments(ctx context.Context, instruments []domain.Instrument) (int, error) {
	log := logging.FromContext(ctx)

	if len(instruments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("UpsertInstruments: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range instruments {
		inst := &instruments[i]

		symbol, err := domain.NormalizeSymbol(inst.Symbol)
		if err != nil {
			return 0, fmt.Errorf("UpsertInstruments: %q: %w", inst.Symbol, err)
		}
		inst.Symbol = symbol

		if err := domain.ValidateCurrency(inst.Currency); err != nil {
			return 0, fmt.Errorf("UpsertInstruments: %s: %w", symbol, err)
		}

		if inst.ID == uuid.Nil {
			inst.ID = uuid.New()
		}
		if inst.CreatedAt.IsZero() {
			inst.CreatedAt = now
		}

		if err := s.instruments.Upsert(ctx, tx, inst); err != nil {
			return 0, fmt.Errorf("UpsertInstruments: %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("UpsertInstruments: commit: %w", err)
	}

	log.Info("instruments loaded", "count", len(instruments))
	return len(instruments), nil
}

func (s *Service) GetInstrument(ctx context.Context, symbol string) (*domain.Instrument, error) {
	canonical, err := domain.NormalizeSymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("GetInstrument: %w", err)
	}

	inst, err := s.instruments.GetBySymbol(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("GetInstrument: %w", err)
	}
	return inst, nil
}

func (s *Service) ListInstruments(ctx context.Context, limit, offset int) ([]domain.Instrument, int, error) {
	if limit <= 0 {
		limit = defaultInstrumentLimit
	}
	if offset < 0 {
		offset = 0
	}

	instruments, total, err := s.instruments.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListInstruments: %w", err)
	}
	return instruments, total, nil
}
