package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/LLkaia/family-budget/internal/domain"
)

const positionColumns = `id, account_id, symbol, quantity_active, entry_price, opened_at, created_at`

type PositionRepository struct {
	db *sql.DB
}

func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Create(ctx context.Context, tx *sql.Tx, position *domain.Position) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO positions (id, account_id, symbol, quantity_active, entry_price, opened_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		position.ID, position.AccountID, position.Symbol, position.QuantityActive,
		position.EntryPrice, position.OpenedAt, position.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListOpenForUpdate returns the open lots for one (account, symbol) in FIFO
// order, oldest open first with the lot id breaking ties, and locks them for
// the duration of tx.
func (r *PositionRepository) ListOpenForUpdate(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, symbol string) ([]domain.Position, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions
		WHERE account_id = $1 AND symbol = $2 AND quantity_active > 0
		ORDER BY opened_at, id
		FOR UPDATE`,
		accountID, symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOpenForUpdate: %w", err)
	}
	defer rows.Close()

	positions, err := collectPositions(rows)
	if err != nil {
		return nil, fmt.Errorf("ListOpenForUpdate: %w", err)
	}
	return positions, nil
}

func (r *PositionRepository) ListOpenByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions
		WHERE account_id = $1 AND quantity_active > 0
		ORDER BY opened_at, id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOpenByAccount: %w", err)
	}
	defer rows.Close()

	positions, err := collectPositions(rows)
	if err != nil {
		return nil, fmt.Errorf("ListOpenByAccount: %w", err)
	}
	return positions, nil
}

// Drain reduces a lot's active quantity. The guard in the WHERE clause keeps
// quantity_active from going negative even if callers race.
func (r *PositionRepository) Drain(ctx context.Context, tx *sql.Tx, id string, by int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE positions SET quantity_active = quantity_active - $2
		WHERE id = $1 AND quantity_active >= $2`,
		id, by,
	)
	if err != nil {
		return fmt.Errorf("Drain: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Drain: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Drain: lot %s by %d: %w", id, by, domain.ErrInsufficientOpenQuantity)
	}
	return nil
}

func collectPositions(rows *sql.Rows) ([]domain.Position, error) {
	var positions []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		positions = append(positions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return positions, nil
}

func scanPosition(s scanner) (*domain.Position, error) {
	var p domain.Position
	err := s.Scan(
		&p.ID, &p.AccountID, &p.Symbol, &p.QuantityActive,
		&p.EntryPrice, &p.OpenedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
