package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LLkaia/family-budget/internal/domain"
)

const instrumentColumns = `id, symbol, exchange, currency, description, kind, created_at`

type InstrumentRepository struct {
	db *sql.DB
}

func NewInstrumentRepository(db *sql.DB) *InstrumentRepository {
	return &InstrumentRepository{db: db}
}

// Upsert inserts the instrument or refreshes its reference fields when the
// symbol is already known. The id of an existing row never changes.
func (r *InstrumentRepository) Upsert(ctx context.Context, tx *sql.Tx, inst *domain.Instrument) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO instruments (id, symbol, exchange, currency, description, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol) DO UPDATE SET
			exchange = EXCLUDED.exchange,
			currency = EXCLUDED.currency,
			description = EXCLUDED.description,
			kind = EXCLUDED.kind`,
		inst.ID, inst.Symbol, inst.Exchange, inst.Currency,
		inst.Description, inst.Kind, inst.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *InstrumentRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instrumentColumns+` FROM instruments WHERE symbol = $1`, symbol,
	)
	inst, err := scanInstrument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetBySymbol: %w", domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("GetBySymbol: %w", err)
	}
	return inst, nil
}

func (r *InstrumentRepository) List(ctx context.Context, limit, offset int) ([]domain.Instrument, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instruments`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+instrumentColumns+` FROM instruments ORDER BY symbol LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var instruments []domain.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		instruments = append(instruments, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return instruments, total, nil
}

func scanInstrument(s scanner) (*domain.Instrument, error) {
	var inst domain.Instrument
	err := s.Scan(
		&inst.ID, &inst.Symbol, &inst.Exchange, &inst.Currency,
		&inst.Description, &inst.Kind, &inst.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}
