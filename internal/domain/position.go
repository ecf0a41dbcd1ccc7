package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position is a single lot: a batch of shares bought at one time and price.
// Closes drain QuantityActive towards zero; a drained lot stays on record.
//
// The ID is a ULID, so ascending ID order is creation order. FIFO
// consumption sorts by OpenedAt first and falls back to ID, which keeps the
// order deterministic when several lots share an open timestamp.
type Position struct {
	ID             string
	AccountID      uuid.UUID
	Symbol         string
	QuantityActive int64
	EntryPrice     decimal.Decimal
	OpenedAt       time.Time
	CreatedAt      time.Time
}

// Open reports whether the lot still has active shares.
func (p *Position) Open() bool {
	return p.QuantityActive > 0
}
