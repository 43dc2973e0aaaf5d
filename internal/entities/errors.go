package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidBuyer          = errors.New("exactly one of user id or guest email must be set")
	ErrInvalidOrder          = errors.New("invalid order")
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNumberTaken      = errors.New("order number already taken")
	ErrPaymentNotConfirmed   = errors.New("payment has not been confirmed")
	ErrPaymentMismatch       = errors.New("payment intent does not match order")
	ErrPaymentStatusConflict = errors.New("order payment status changed concurrently")
	ErrOversoldInventory     = errors.New("inventory oversold")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrPersistence           = errors.New("persistence failure")
)

type ProductNotFoundError struct {
	ProductIDs []string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

type InsufficientInventoryError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %d, only %d left in stock", e.Name, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

// InsufficientStockError is returned by the inventory ledger when a
// conditional decrement finds less stock than requested.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OversoldInventoryError means a paid order could not be backed by stock.
// It needs manual reconciliation.
type OversoldInventoryError struct {
	ProductID string
}

func (e *OversoldInventoryError) Error() string {
	return fmt.Sprintf("inventory oversold for product %s", e.ProductID)
}

func (e *OversoldInventoryError) Unwrap() error { return ErrOversoldInventory }

// IsRetryable reports whether the caller may safely retry the same request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrPersistence)
}
