package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a brokerage cash account. Balance is only ever changed by
// applying ledger entries inside the service transactions; it never goes
// negative.
type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Currency  string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
