package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/id"
)

// TestOwnerID is the owner every seeded account belongs to unless a test
// needs several owners.
var TestOwnerID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func SeedAccount(t *testing.T, db *sql.DB, ownerID uuid.UUID, currency, balance string) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "test account",
		Currency:  currency,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, owner_id, name, currency, balance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.OwnerID, a.Name, a.Currency, a.Balance, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s/%s: %v", ownerID, currency, err)
	}
	return a
}

func SeedInstrument(t *testing.T, db *sql.DB, symbol, currency string) *domain.Instrument {
	t.Helper()

	inst := &domain.Instrument{
		ID:        uuid.New(),
		Symbol:    symbol,
		Exchange:  "TEST",
		Currency:  currency,
		Kind:      "Common Stock",
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO instruments (id, symbol, exchange, currency, description, kind, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (symbol) DO NOTHING`,
		inst.ID, inst.Symbol, inst.Exchange, inst.Currency, inst.Description, inst.Kind, inst.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed instrument %s: %v", symbol, err)
	}
	return inst
}

// SeedPosition inserts a lot directly, bypassing the opening operation, for
// tests that need lots with controlled open timestamps.
func SeedPosition(t *testing.T, db *sql.DB, accountID uuid.UUID, symbol string, quantity int64, entryPrice string, openedAt time.Time) *domain.Position {
	t.Helper()

	p := &domain.Position{
		ID:             id.New(),
		AccountID:      accountID,
		Symbol:         symbol,
		QuantityActive: quantity,
		EntryPrice:     decimal.RequireFromString(entryPrice),
		OpenedAt:       openedAt,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO positions (id, account_id, symbol, quantity_active, entry_price, opened_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.AccountID, p.Symbol, p.QuantityActive, p.EntryPrice, p.OpenedAt, p.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed position %s %s: %v", accountID, symbol, err)
	}
	return p
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountLedgerEntries(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for account %s: %v", accountID, err)
	}
	return count
}

// OpenQuantities returns quantity_active of every lot for (account, symbol)
// in FIFO order, drained lots included.
func OpenQuantities(t *testing.T, db *sql.DB, accountID uuid.UUID, symbol string) []int64 {
	t.Helper()

	rows, err := db.Query(
		`SELECT quantity_active FROM positions
		 WHERE account_id = $1 AND symbol = $2 ORDER BY opened_at, id`,
		accountID, symbol,
	)
	if err != nil {
		t.Fatalf("list open quantities %s %s: %v", accountID, symbol, err)
	}
	defer rows.Close()

	var quantities []int64
	for rows.Next() {
		var q int64
		if err := rows.Scan(&q); err != nil {
			t.Fatalf("scan quantity: %v", err)
		}
		quantities = append(quantities, q)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return quantities
}
