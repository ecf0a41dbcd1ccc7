// Package quote defines the price-lookup contract used when valuing open
// positions. Live market data stays outside the module; callers inject a
// Source, and the bundled Static implementation serves fixed prices loaded
// from operator-supplied files or test fixtures.
package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
)

// Source yields the current per-share price for an instrument symbol.
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Static serves prices from a fixed in-memory table.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewStatic() *Static {
	return &Static{prices: make(map[string]decimal.Decimal)}
}

// NewStaticFromStrings builds a Static from symbol to price strings, the
// shape a prices file deserializes into.
func NewStaticFromStrings(prices map[string]string) (*Static, error) {
	s := NewStatic()
	for symbol, raw := range prices {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("NewStaticFromStrings: price for %s: %w", symbol, domain.ErrInvalidPrice)
		}
		if err := s.Set(symbol, price); err != nil {
			return nil, fmt.Errorf("NewStaticFromStrings: %w", err)
		}
	}
	return s, nil
}

// Set stores a price under the canonical form of symbol.
func (s *Static) Set(symbol string, price decimal.Decimal) error {
	canonical, err := domain.NormalizeSymbol(symbol)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	if !price.IsPositive() {
		return fmt.Errorf("Set: %s: %w", canonical, domain.ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[canonical] = domain.RoundMoney(price)
	return nil
}

// Price looks up symbol, which is expected in canonical form. Unknown symbols
// report domain.ErrNotFound.
func (s *Static) Price(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("Price: %s: %w", symbol, domain.ErrNotFound)
	}
	return price, nil
}
