// Package apperrs holds the error taxonomy shared by storage, services and handlers.
package apperrs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username is taken")
	ErrNotFound            = errors.New("not found")
	ErrQuoteUnavailable    = errors.New("price service unavailable")
	ErrInsufficientHolding = errors.New("insufficient holding")
)

// ValidationError is a rejected input. Nothing has been mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrMissingSymbol      = &ValidationError{Field: "symbol", Reason: "missing symbol"}
	ErrBadSymbol          = &ValidationError{Field: "symbol", Reason: "invalid symbol"}
	ErrBadSide            = &ValidationError{Field: "side", Reason: "side must be BUY or SELL"}
	ErrBadQuantity        = &ValidationError{Field: "qty", Reason: "quantity must be a number greater than 0, below 1e12, with at most 8 decimals"}
	ErrBadPrice           = &ValidationError{Field: "price", Reason: "price must be a number greater than 0, below 1e12, with at most 8 decimals"}
	ErrBadMode            = &ValidationError{Field: "mode", Reason: "mode must be limit or market"}
	ErrBadTicker          = &ValidationError{Field: "ticker", Reason: "invalid ticker"}
	ErrBadDate            = &ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD and not in the future"}
	ErrBadQuoteMode       = &ValidationError{Field: "mode", Reason: "mode must be empty or latest"}
	ErrMissingCredentials = &ValidationError{Field: "email", Reason: "missing email or password"}
	ErrMissingSignup      = &ValidationError{Field: "email", Reason: "missing email, username, or password"}
	ErrBadUsername        = &ValidationError{Field: "username", Reason: "username must be 3-30 chars; letters, numbers, and underscores only"}
	ErrBadPassword        = &ValidationError{Field: "password", Reason: "password must be at most 72 bytes"}
	ErrBadBody            = &ValidationError{Field: "body", Reason: "invalid request body"}
)

// InsufficientHoldingError reports a sell larger than the held quantity.
type InsufficientHoldingError struct {
	Symbol    string
	Held      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientHoldingError) Error() string {
	return fmt.Sprintf("cannot sell %s %s: you hold %s", e.Requested, e.Symbol, e.Held)
}

func (e *InsufficientHoldingError) Is(target error) bool {
	return target == ErrInsufficientHolding
}
