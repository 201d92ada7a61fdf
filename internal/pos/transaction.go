package pos

import "time"

// Transaction is an immutable snapshot produced by BuildTransaction once a
// payment covers the cart total. Items are deep-copied so later cart edits
// cannot alter a built transaction.
type Transaction struct {
	Items       []LineItem `json:"items"`
	TotalAmount int64      `json:"total_amount"`
	AmountPaid  int64      `json:"amount_paid"`
	Change      int64      `json:"change"`
	Timestamp   time.Time  `json:"timestamp"`
}

// BuildTransaction validates amountPaid against the cart total and returns
// the transaction snapshot. On insufficient payment it returns an
// *InsufficientPaymentError and leaves the cart untouched. The function has
// no side effects beyond allocation; persisting the result is the caller's
// concern, gated on user confirmation.
func BuildTransaction(cart *Cart, amountPaid int64) (*Transaction, error) {
	total := cart.Total()
	if amountPaid < total {
		return nil, &InsufficientPaymentError{Total: total, AmountPaid: amountPaid}
	}

	return &Transaction{
		Items:       cart.Items(),
		TotalAmount: total,
		AmountPaid:  amountPaid,
		Change:      amountPaid - total,
		Timestamp:   time.Now(),
	}, nil
}
