package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
	KindDividend   EntryKind = "dividend"
	KindStockIn    EntryKind = "stock_in"
	KindStockOut   EntryKind = "stock_out"
)

func (k EntryKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDividend, KindStockIn, KindStockOut:
		return true
	}
	return false
}

// Debit reports whether the kind spends account money. Debit kinds charge
// total+fee; credit kinds pay out total-fee.
func (k EntryKind) Debit() bool {
	return k == KindStockIn || k == KindWithdrawal
}

// LedgerEntry is an immutable record of one cash-affecting event on an
// account. Entries are append-only; they are never updated or deleted.
type LedgerEntry struct {
	ID          string
	AccountID   uuid.UUID
	Kind        EntryKind
	Symbol      *string
	PositionID  *string
	PerformedAt time.Time
	UnitPrice   decimal.Decimal
	Quantity    int64
	Fee         decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// Validate enforces the per-kind reference contract: stock movements must
// point at their lot and symbol, dividends at their symbol. A violation is a
// programming error in the caller, not user input.
func (e *LedgerEntry) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown entry kind %q: %w", e.Kind, ErrMissingReference)
	}
	switch e.Kind {
	case KindStockIn, KindStockOut:
		if e.PositionID == nil || e.Symbol == nil {
			return fmt.Errorf("%s entry: %w", e.Kind, ErrMissingReference)
		}
	case KindDividend:
		if e.Symbol == nil {
			return fmt.Errorf("%s entry: %w", e.Kind, ErrMissingReference)
		}
	}
	return nil
}

// CashDelta is the signed effect of the entry on the account balance:
// negative for debits (total+fee leaves the account), positive for credits
// (total-fee arrives). Tax is recorded on the entry but settled outside the
// account balance.
func (e *LedgerEntry) CashDelta() decimal.Decimal {
	if e.Kind.Debit() {
		return e.TotalAmount.Add(e.Fee).Neg()
	}
	return e.TotalAmount.Sub(e.Fee)
}

// NewEntry assembles a ledger entry. The unit price is normalized to money
// scale and the total amount derived from it, so every persisted figure
// carries at most MoneyScale fractional digits.
func NewEntry(id string, accountID uuid.UUID, kind EntryKind, unitPrice decimal.Decimal, quantity int64, performedAt time.Time) *LedgerEntry {
	price := RoundMoney(unitPrice)
	return &LedgerEntry{
		ID:          id,
		AccountID:   accountID,
		Kind:        kind,
		PerformedAt: performedAt,
		UnitPrice:   price,
		Quantity:    quantity,
		Fee:         decimal.Zero,
		Tax:         decimal.Zero,
		TotalAmount: RoundMoney(price.Mul(decimal.NewFromInt(quantity))),
	}
}
