package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidType       = errors.New("transaction type must be inbound or outbound")
	ErrNotFound          = errors.New("not found")
	ErrBadCredentials    = errors.New("invalid username or password")
	ErrUnauthorized      = errors.New("login required")
)

// InsufficientStockError reports an outbound that exceeds the on-hand quantity.
type InsufficientStockError struct {
	ProductID int64
	Have      int
	Need      int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (need %d, have %d)", e.ProductID, e.Need, e.Have)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
