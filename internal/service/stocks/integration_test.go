package stocks_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/quote"
	"github.com/LLkaia/family-budget/internal/repository"
	"github.com/LLkaia/family-budget/internal/service/stocks"
	"github.com/LLkaia/family-budget/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupService(t *testing.T, db *sql.DB, quotes quote.Source) *stocks.Service {
	t.Helper()
	if quotes == nil {
		quotes = quote.NewStatic()
	}
	return stocks.NewService(
		repository.NewAccountRepository(db),
		repository.NewInstrumentRepository(db),
		repository.NewPositionRepository(db),
		repository.NewLedgerRepository(db),
		quotes,
		db,
	)
}

func assertBalance(t *testing.T, db *sql.DB, acct *domain.Account, want string) {
	t.Helper()
	got := testutil.GetAccountBalance(t, db, acct.ID)
	assert.True(t, got.Equal(dec(want)), "balance: got %s, want %s", got, want)
}

// statement returns the account's ledger oldest entry first.
func statement(t *testing.T, svc *stocks.Service, acct *domain.Account) []domain.LedgerEntry {
	t.Helper()
	entries, _, err := svc.Statement(context.Background(), acct.ID, domain.StatementFilter{Limit: 100})
	require.NoError(t, err)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func TestCreateAccount_Persists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, stocks.CreateAccountRequest{
		OwnerID:        testutil.TestOwnerID,
		Name:           "brokerage",
		Currency:       "USD",
		OpeningBalance: dec("1000.00"),
	})
	require.NoError(t, err)

	got, err := svc.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "brokerage", got.Name)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Balance.Equal(dec("1000")), "got %s", got.Balance)

	accounts, err := svc.ListAccountsByOwner(ctx, testutil.TestOwnerID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestOpenPosition_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	position, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "aapl",
		Quantity:  10,
		UnitPrice: dec("50.00"),
		Fee:       dec("5.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", position.Symbol)
	assert.Equal(t, int64(10), position.QuantityActive)

	assertBalance(t, db, acct, "495.00")
	assert.Equal(t, []int64{10}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))

	entries := statement(t, svc, acct)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, domain.KindStockIn, e.Kind)
	require.NotNil(t, e.PositionID)
	assert.Equal(t, position.ID, *e.PositionID)
	assert.Equal(t, int64(10), e.Quantity)
	assert.True(t, e.TotalAmount.Equal(dec("500")), "total: got %s", e.TotalAmount)
	assert.True(t, e.Fee.Equal(dec("5")), "fee: got %s", e.Fee)
}

func TestOpenPosition_InsufficientFundsLeavesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "100.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	_, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  10,
		UnitPrice: dec("50.00"),
		Fee:       dec("5.00"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assertBalance(t, db, acct, "100.00")
	assert.Empty(t, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, acct.ID))
}

func TestOpenPosition_UnknownInstrument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")

	_, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  1,
		UnitPrice: dec("50.00"),
	})
	require.ErrorIs(t, err, domain.ErrInstrumentNotFound)
}

func TestOpenPosition_CurrencyMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "SAP", "EUR")

	_, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "SAP",
		Quantity:  1,
		UnitPrice: dec("50.00"),
	})
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestClosePositions_ConsumesOldestLotsFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 3, "11.00", day.AddDate(0, 0, 1))
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 2, "12.00", day.AddDate(0, 0, 2))

	err := svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  6,
		UnitPrice: dec("20.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 2, 2}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
	assertBalance(t, db, acct, "120.00")

	entries := statement(t, svc, acct)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.KindStockOut, entries[0].Kind)
	assert.Equal(t, int64(5), entries[0].Quantity)
	assert.True(t, entries[0].TotalAmount.Equal(dec("100")), "got %s", entries[0].TotalAmount)
	assert.Equal(t, int64(1), entries[1].Quantity)
	assert.True(t, entries[1].TotalAmount.Equal(dec("20")), "got %s", entries[1].TotalAmount)
}

func TestClosePositions_SpansTwoLots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "VOO", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "VOO", 5, "100.00", day)
	testutil.SeedPosition(t, db, acct.ID, "VOO", 5, "105.00", day.AddDate(0, 0, 1))

	err := svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "VOO",
		Quantity:  7,
		UnitPrice: dec("110.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 3}, testutil.OpenQuantities(t, db, acct.ID, "VOO"))

	entries := statement(t, svc, acct)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].Quantity)
	assert.Equal(t, int64(2), entries[1].Quantity)
}

func TestClosePositions_AllOrNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "50.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 3, "11.00", day.AddDate(0, 0, 1))
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 2, "12.00", day.AddDate(0, 0, 2))

	err := svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  11,
		UnitPrice: dec("20.00"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientOpenQuantity)

	assert.Equal(t, []int64{5, 3, 2}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
	assertBalance(t, db, acct, "50.00")
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, acct.ID))
}

func TestClosePositions_ExactTotalDrainsEveryLot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 3, "11.00", day.AddDate(0, 0, 1))
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 2, "12.00", day.AddDate(0, 0, 2))

	err := svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  10,
		UnitPrice: dec("15.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 0, 0}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
	assertBalance(t, db, acct, "150.00")
	assert.Equal(t, 3, testutil.CountLedgerEntries(t, db, acct.ID))
}

func TestClosePositions_FeeChargedOnOldestSliceOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 3, "10.00", day.AddDate(0, 0, 1))

	err := svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  7,
		UnitPrice: dec("10.00"),
		Fee:       dec("2.00"),
	})
	require.NoError(t, err)

	entries := statement(t, svc, acct)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Fee.Equal(dec("2")), "oldest slice fee: got %s", entries[0].Fee)
	assert.True(t, entries[1].Fee.IsZero(), "later slice fee: got %s", entries[1].Fee)

	// 7 x 10.00 minus the one-off fee.
	assertBalance(t, db, acct, "68.00")
}

func TestOpenClose_RoundTripRestoresBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	_, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  10,
		UnitPrice: dec("50.00"),
	})
	require.NoError(t, err)
	assertBalance(t, db, acct, "500.00")

	err = svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  10,
		UnitPrice: dec("50.00"),
	})
	require.NoError(t, err)
	assertBalance(t, db, acct, "1000.00")
}

func TestOpenClose_Scenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	_, err := svc.OpenPosition(ctx, stocks.OpenPositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  10,
		UnitPrice: dec("50.00"),
		Fee:       dec("5.00"),
	})
	require.NoError(t, err)
	assertBalance(t, db, acct, "495.00")

	err = svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  4,
		UnitPrice: dec("60.00"),
		Fee:       dec("2.00"),
	})
	require.NoError(t, err)

	assertBalance(t, db, acct, "733.00")
	assert.Equal(t, []int64{6}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
}

func TestClosePositions_ConcurrentClosesCannotOversell(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day.AddDate(0, 0, 1))

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.ClosePositions(ctx, stocks.ClosePositionRequest{
				AccountID: acct.ID,
				Symbol:    "AAPL",
				Quantity:  10,
				UnitPrice: dec("20.00"),
			})
		}()
	}

	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientOpenQuantity)
			failures++
		}
	}

	assert.Equal(t, 1, successes, "exactly one close should succeed")
	assert.Equal(t, 1, failures, "exactly one close should fail")

	assert.Equal(t, []int64{0, 0}, testutil.OpenQuantities(t, db, acct.ID, "AAPL"))
	assertBalance(t, db, acct, "1200.00")
}

func TestDepositWithdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")

	account, err := svc.Deposit(ctx, stocks.CashRequest{
		AccountID: acct.ID,
		Amount:    dec("200.00"),
		Fee:       dec("1.00"),
	})
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("1199")), "got %s", account.Balance)

	account, err = svc.Withdraw(ctx, stocks.CashRequest{
		AccountID: acct.ID,
		Amount:    dec("100.00"),
		Fee:       dec("0.50"),
	})
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("1098.50")), "got %s", account.Balance)

	_, err = svc.Withdraw(ctx, stocks.CashRequest{
		AccountID: acct.ID,
		Amount:    dec("2000.00"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assertBalance(t, db, acct, "1098.50")
	assert.Equal(t, 2, testutil.CountLedgerEntries(t, db, acct.ID))
}

func TestWithdraw_ExactBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "250.00")

	account, err := svc.Withdraw(ctx, stocks.CashRequest{
		AccountID: acct.ID,
		Amount:    dec("250.00"),
	})
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero(), "got %s", account.Balance)
}

func TestRecordDividend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "1000.00")
	testutil.SeedInstrument(t, db, "AAPL", "USD")
	testutil.SeedInstrument(t, db, "SAP", "EUR")

	account, err := svc.RecordDividend(ctx, stocks.DividendRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		PerShare:  dec("0.24"),
		Quantity:  100,
		Tax:       dec("3.60"),
	})
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("1024")), "got %s", account.Balance)

	entries := statement(t, svc, acct)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.KindDividend, entries[0].Kind)
	require.NotNil(t, entries[0].Symbol)
	assert.Equal(t, "AAPL", *entries[0].Symbol)
	// Tax is recorded on the entry but never moves the balance.
	assert.True(t, entries[0].Tax.Equal(dec("3.60")), "got %s", entries[0].Tax)

	_, err = svc.RecordDividend(ctx, stocks.DividendRequest{
		AccountID: acct.ID,
		Symbol:    "MSFT",
		PerShare:  dec("0.75"),
		Quantity:  10,
	})
	require.ErrorIs(t, err, domain.ErrInstrumentNotFound)

	_, err = svc.RecordDividend(ctx, stocks.DividendRequest{
		AccountID: acct.ID,
		Symbol:    "SAP",
		PerShare:  dec("1.10"),
		Quantity:  10,
	})
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}
