package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// symbolPattern accepts 1-6 uppercase alphanumerics with an optional
// exchange-style suffix, e.g. AAPL, BRK.B, BF-B, 9984.T.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,6}([.-][A-Z0-9]{1,4})?$`)

// Instrument is reference data for a tradable stock symbol. It is loaded in
// bulk by an operator and never mutated by the accounting operations.
type Instrument struct {
	ID          uuid.UUID
	Symbol      string
	Exchange    string
	Currency    string
	Description string
	Kind        string
	CreatedAt   time.Time
}

// NormalizeSymbol trims and upper-cases a raw symbol and validates it
// against the symbol pattern.
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidSymbol)
	}
	return s, nil
}
