package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementFilter narrows and pages a ledger statement.
type StatementFilter struct {
	From   *time.Time
	Limit  int
	Offset int
}

// Closure is a stock_out entry joined with the entry price of the lot it
// drained, the raw material of the realized-gains report.
type Closure struct {
	LedgerEntry
	EntryPrice decimal.Decimal
}

// SymbolGain aggregates the realized result of every closure of one symbol.
type SymbolGain struct {
	Symbol     string
	SharesSold int64
	Proceeds   decimal.Decimal
	CostBasis  decimal.Decimal
	Fees       decimal.Decimal
	Realized   decimal.Decimal
}

// PositionValue is an open lot valued at a quoted price.
type PositionValue struct {
	Position
	Price          decimal.Decimal
	MarketValue    decimal.Decimal
	UnrealizedGain decimal.Decimal
}
