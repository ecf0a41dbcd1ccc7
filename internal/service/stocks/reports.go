package stocks

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
)

const defaultStatementLimit = 50

// ListOpenPositions returns the account's open lots oldest first. A plain
// read; callers may re-run it at any time.
func (s *Service) ListOpenPositions(ctx context.Context, accountID uuid.UUID) ([]domain.Position, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("ListOpenPositions: %w", err)
	}

	positions, err := s.positions.ListOpenByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListOpenPositions: %w", err)
	}
	return positions, nil
}

// PositionQuotes values every open lot at the injected quote source's price.
// A symbol without a price fails the whole report.
func (s *Service) PositionQuotes(ctx context.Context, accountID uuid.UUID) ([]domain.PositionValue, error) {
	positions, err := s.ListOpenPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("PositionQuotes: %w", err)
	}

	values := make([]domain.PositionValue, 0, len(positions))
	for _, p := range positions {
		price, err := s.quotes.Price(ctx, p.Symbol)
		if err != nil {
			return nil, fmt.Errorf("PositionQuotes: %s: %w", p.Symbol, err)
		}

		qty := decimal.NewFromInt(p.QuantityActive)
		value := domain.RoundMoney(price.Mul(qty))
		cost := domain.RoundMoney(p.EntryPrice.Mul(qty))

		values = append(values, domain.PositionValue{
			Position:       p,
			Price:          price,
			MarketValue:    value,
			UnrealizedGain: value.Sub(cost),
		})
	}
	return values, nil
}

// Statement returns the account's ledger newest first plus the total number
// of entries matching the filter.
func (s *Service) Statement(ctx context.Context, accountID uuid.UUID, filter domain.StatementFilter) ([]domain.LedgerEntry, int, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, 0, fmt.Errorf("Statement: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultStatementLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, total, err := s.ledger.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("Statement: %w", err)
	}
	return entries, total, nil
}

// RealizedGains aggregates every closure of the account into per-symbol
// figures: proceeds, cost basis of the drained shares, fees, and the realized
// result (proceeds - cost - fees). The second return is the account total.
func (s *Service) RealizedGains(ctx context.Context, accountID uuid.UUID) ([]domain.SymbolGain, decimal.Decimal, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("RealizedGains: %w", err)
	}

	closures, err := s.ledger.ListClosures(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("RealizedGains: %w", err)
	}

	bySymbol := make(map[string]*domain.SymbolGain)
	for _, c := range closures {
		if c.Symbol == nil {
			return nil, decimal.Zero, fmt.Errorf("RealizedGains: closure %s: %w", c.ID, domain.ErrMissingReference)
		}

		gain, ok := bySymbol[*c.Symbol]
		if !ok {
			gain = &domain.SymbolGain{Symbol: *c.Symbol}
			bySymbol[*c.Symbol] = gain
		}

		cost := domain.RoundMoney(c.EntryPrice.Mul(decimal.NewFromInt(c.Quantity)))
		gain.SharesSold += c.Quantity
		gain.Proceeds = gain.Proceeds.Add(c.TotalAmount)
		gain.CostBasis = gain.CostBasis.Add(cost)
		gain.Fees = gain.Fees.Add(c.Fee)
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	gains := make([]domain.SymbolGain, 0, len(symbols))
	total := decimal.Zero
	for _, symbol := range symbols {
		gain := bySymbol[symbol]
		gain.Realized = gain.Proceeds.Sub(gain.CostBasis).Sub(gain.Fees)
		total = total.Add(gain.Realized)
		gains = append(gains, *gain)
	}
	return gains, total, nil
}
