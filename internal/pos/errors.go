package pos

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("order not found")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrNothingToExport     = errors.New("no sales to export for the selected date")
)

// ValidationError reports a draft that cannot be finalized or an invalid
// operator input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a queue lookup for an order id that is not parked.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientPaymentError reports a tendered amount below the amount due.
type InsufficientPaymentError struct {
	Due  decimal.Decimal
	Paid decimal.Decimal
}

func (e InsufficientPaymentError) Error() string {
	return fmt.Sprintf("paid %s is less than order total %s", FormatMoney(e.Paid), FormatMoney(e.Due))
}

func (e InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}
