package domain

import "errors"

var (
	ErrNotFound                 = errors.New("not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrInstrumentNotFound       = errors.New("instrument not found")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInsufficientOpenQuantity = errors.New("insufficient open quantity")
	ErrMissingReference         = errors.New("ledger entry is missing a required reference")
	ErrInvalidQuantity          = errors.New("quantity must be greater than zero")
	ErrInvalidPrice             = errors.New("price must be greater than zero")
	ErrInvalidAmount            = errors.New("amount must be greater than zero")
	ErrInvalidFee               = errors.New("fee must not be negative")
	ErrInvalidTax               = errors.New("tax must not be negative")
	ErrInvalidSymbol            = errors.New("invalid stock symbol")
	ErrInvalidCurrency          = errors.New("invalid currency code")
	ErrInvalidName              = errors.New("name must not be empty")
	ErrCurrencyMismatch         = errors.New("currency mismatch")
)
