package domain

import "fmt"

// Fill is one slice of a planned close: Quantity shares taken from Position.
type Fill struct {
	Position *Position
	Quantity int64
}

// MatchFIFO plans how a close of quantity shares is spread across open lots.
// Lots must already be ordered oldest first (ascending open time, ties by
// ascending ID). Each lot is consumed up to its active quantity before the
// next one is touched, so a close produces at most one fill per lot.
//
// The plan is computed without mutating the lots. If the lots cannot cover
// the requested quantity the whole close is rejected with
// ErrInsufficientOpenQuantity and no fill is returned.
func MatchFIFO(lots []*Position, quantity int64) ([]Fill, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("MatchFIFO: %w", ErrInvalidQuantity)
	}

	remaining := quantity
	fills := make([]Fill, 0, len(lots))
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		if lot.QuantityActive <= 0 {
			continue
		}
		consumed := min(remaining, lot.QuantityActive)
		fills = append(fills, Fill{Position: lot, Quantity: consumed})
		remaining -= consumed
	}

	if remaining > 0 {
		return nil, fmt.Errorf("MatchFIFO: %d of %d uncovered: %w",
			remaining, quantity, ErrInsufficientOpenQuantity)
	}
	return fills, nil
}
