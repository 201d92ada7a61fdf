package pos

import (
	"fmt"
	"strings"
)

// ConflictError reports an attempt to add a service that is mutually
// exclusive with something already in the cart. The cart is never mutated
// when this is returned.
type ConflictError struct {
	Service       string
	ConflictsWith []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("service %q conflicts with %s already in cart",
		e.Service, strings.Join(e.ConflictsWith, ", "))
}

// InsufficientPaymentError reports a payment amount below the cart total.
// Amounts are in minor units.
type InsufficientPaymentError struct {
	Total      int64
	AmountPaid int64
}

// Shortfall is the amount still owed.
func (e *InsufficientPaymentError) Shortfall() int64 {
	return e.Total - e.AmountPaid
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total=%s paid=%s short=%s",
		FormatAmount(e.Total), FormatAmount(e.AmountPaid), FormatAmount(e.Shortfall()))
}

// StateError reports a checkout operation attempted in the wrong session
// state, e.g. editing the cart while payment is in progress.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("operation %s not allowed in state %s", e.Op, e.State)
}
