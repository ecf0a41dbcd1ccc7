package stocks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/quote"
	"github.com/LLkaia/family-budget/internal/service/stocks"
	"github.com/LLkaia/family-budget/internal/testutil"
)

func TestStatement_PagingAndFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, amount := range []string{"1.00", "2.00", "3.00"} {
		_, err := svc.Deposit(ctx, stocks.CashRequest{
			AccountID:   acct.ID,
			Amount:      dec(amount),
			PerformedAt: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	entries, total, err := svc.Statement(ctx, acct.ID, domain.StatementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].TotalAmount.Equal(dec("3")), "newest first: got %s", entries[0].TotalAmount)
	assert.True(t, entries[1].TotalAmount.Equal(dec("2")), "got %s", entries[1].TotalAmount)

	from := base.AddDate(0, 0, 1)
	entries, total, err = svc.Statement(ctx, acct.ID, domain.StatementFilter{From: &from, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, entries, 2)

	_, _, err = svc.Statement(ctx, acct.ID, domain.StatementFilter{Limit: 10, Offset: 2})
	require.NoError(t, err)
}

func TestRealizedGains(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "AAPL", "USD")
	testutil.SeedInstrument(t, db, "MSFT", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "10.00", day)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 5, "12.00", day.AddDate(0, 0, 1))
	testutil.SeedPosition(t, db, acct.ID, "MSFT", 2, "20.00", day)

	require.NoError(t, svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Quantity:  7,
		UnitPrice: dec("15.00"),
		Fee:       dec("1.00"),
	}))
	require.NoError(t, svc.ClosePositions(ctx, stocks.ClosePositionRequest{
		AccountID: acct.ID,
		Symbol:    "MSFT",
		Quantity:  1,
		UnitPrice: dec("25.00"),
	}))

	gains, total, err := svc.RealizedGains(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, gains, 2)

	aapl := gains[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, int64(7), aapl.SharesSold)
	assert.True(t, aapl.Proceeds.Equal(dec("105")), "proceeds: got %s", aapl.Proceeds)
	// 5 shares at 10.00 plus 2 at 12.00.
	assert.True(t, aapl.CostBasis.Equal(dec("74")), "cost: got %s", aapl.CostBasis)
	assert.True(t, aapl.Fees.Equal(dec("1")), "fees: got %s", aapl.Fees)
	assert.True(t, aapl.Realized.Equal(dec("30")), "realized: got %s", aapl.Realized)

	msft := gains[1]
	assert.Equal(t, "MSFT", msft.Symbol)
	assert.True(t, msft.Realized.Equal(dec("5")), "realized: got %s", msft.Realized)

	assert.True(t, total.Equal(dec("35")), "total: got %s", total)
}

func TestRealizedGains_EmptyAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")

	gains, total, err := svc.RealizedGains(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, gains)
	assert.True(t, total.IsZero())
}

func TestPositionQuotes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	prices := quote.NewStatic()
	require.NoError(t, prices.Set("AAPL", dec("15.00")))

	svc := setupService(t, db, prices)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, testutil.TestOwnerID, "USD", "0")
	testutil.SeedInstrument(t, db, "AAPL", "USD")

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPosition(t, db, acct.ID, "AAPL", 10, "12.00", day)

	values, err := svc.PositionQuotes(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)

	v := values[0]
	assert.Equal(t, "AAPL", v.Symbol)
	assert.True(t, v.Price.Equal(dec("15")), "price: got %s", v.Price)
	assert.True(t, v.MarketValue.Equal(dec("150")), "value: got %s", v.MarketValue)
	assert.True(t, v.UnrealizedGain.Equal(dec("30")), "unrealized: got %s", v.UnrealizedGain)

	// A lot without a price fails the whole report.
	testutil.SeedInstrument(t, db, "MSFT", "USD")
	testutil.SeedPosition(t, db, acct.ID, "MSFT", 1, "100.00", day)

	_, err = svc.PositionQuotes(ctx, acct.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertInstruments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db, nil)
	ctx := context.Background()

	count, err := svc.UpsertInstruments(ctx, []domain.Instrument{
		{Symbol: "aapl", Exchange: "NASDAQ", Currency: "USD", Description: "Apple Inc", Kind: "Common Stock"},
		{Symbol: "9984.T", Exchange: "TSE", Currency: "JPY", Description: "SoftBank Group", Kind: "Common Stock"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	first, err := svc.GetInstrument(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", first.Description)

	// Reloading a known symbol refreshes fields but keeps the row.
	_, err = svc.UpsertInstruments(ctx, []domain.Instrument{
		{Symbol: "AAPL", Exchange: "NASDAQ", Currency: "USD", Description: "Apple Inc.", Kind: "Common Stock"},
	})
	require.NoError(t, err)

	reloaded, err := svc.GetInstrument(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, first.ID, reloaded.ID)
	assert.Equal(t, "Apple Inc.", reloaded.Description)

	instruments, total, err := svc.ListInstruments(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, instruments, 2)
	assert.Equal(t, "9984.T", instruments[0].Symbol)

	_, err = svc.UpsertInstruments(ctx, []domain.Instrument{
		{Symbol: "bad symbol", Currency: "USD"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidSymbol)

	_, err = svc.UpsertInstruments(ctx, []domain.Instrument{
		{Symbol: "NVDA", Currency: "DOLLARS"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}
