package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/LLkaia/family-budget/internal/domain"
)

const ledgerColumns = `id, account_id, kind, symbol, position_id, performed_at,
	unit_price, quantity, fee, tax, total_amount, created_at`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (
			id, account_id, kind, symbol, position_id, performed_at,
			unit_price, quantity, fee, tax, total_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.AccountID, entry.Kind, entry.Symbol, entry.PositionID,
		entry.PerformedAt, entry.UnitPrice, entry.Quantity, entry.Fee, entry.Tax,
		entry.TotalAmount, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter domain.StatementFilter) ([]domain.LedgerEntry, int, error) {
	where := `WHERE account_id = $1`
	args := []any{accountID}
	if filter.From != nil {
		where += ` AND performed_at >= $2`
		args = append(args, *filter.From)
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByAccount: count: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM ledger_entries %s ORDER BY performed_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		ledgerColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByAccount: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListByAccount: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListByAccount: rows: %w", err)
	}
	return entries, total, nil
}

// ListClosures returns every stock_out entry of the account joined with the
// entry price of the lot it drained, oldest first.
func (r *LedgerRepository) ListClosures(ctx context.Context, accountID uuid.UUID) ([]domain.Closure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.account_id, e.kind, e.symbol, e.position_id, e.performed_at,
			e.unit_price, e.quantity, e.fee, e.tax, e.total_amount, e.created_at,
			p.entry_price
		FROM ledger_entries e
		JOIN positions p ON p.id = e.position_id
		WHERE e.account_id = $1 AND e.kind = $2
		ORDER BY e.performed_at, e.id`,
		accountID, domain.KindStockOut,
	)
	if err != nil {
		return nil, fmt.Errorf("ListClosures: %w", err)
	}
	defer rows.Close()

	var closures []domain.Closure
	for rows.Next() {
		var c domain.Closure
		err := rows.Scan(
			&c.ID, &c.AccountID, &c.Kind, &c.Symbol, &c.PositionID, &c.PerformedAt,
			&c.UnitPrice, &c.Quantity, &c.Fee, &c.Tax, &c.TotalAmount, &c.CreatedAt,
			&c.EntryPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("ListClosures: scan: %w", err)
		}
		closures = append(closures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListClosures: rows: %w", err)
	}
	return closures, nil
}

func scanLedgerEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := s.Scan(
		&e.ID, &e.AccountID, &e.Kind, &e.Symbol, &e.PositionID, &e.PerformedAt,
		&e.UnitPrice, &e.Quantity, &e.Fee, &e.Tax, &e.TotalAmount, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
