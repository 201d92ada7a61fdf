package pos

import "encoding/json"

// State is a phase of the checkout flow.
type State string

const (
	// StateBuilding accepts cart edits; conflict checks run on each add.
	StateBuilding State = "BUILDING"
	// StateAwaitingPayment locks the cart while the payment amount is
	// entered.
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	// StateSummaryPresented holds a built transaction awaiting the user's
	// confirmation. Change is only known here.
	StateSummaryPresented State = "SUMMARY_PRESENTED"
)

// Session is one checkout cycle for one staff terminal. It owns the cart and
// the state machine
//
//	Building -> AwaitingPayment -> SummaryPresented -> (finalized, back to Building)
//
// with Cancel returning to Building from either intermediate state without
// mutating the cart. Finalized is not a resting state: confirming the
// summary clears the cart and starts the next cycle, so a persisted session
// is always in one of the three states above.
type Session struct {
	cart       *Cart
	state      State
	customerID int64
	pending    *Transaction
}

// NewSession returns a fresh session in the Building state with an empty
// cart.
func NewSession() *Session {
	return &Session{cart: NewCart(), state: StateBuilding}
}

// State returns the current checkout phase.
func (s *Session) State() State {
	return s.state
}

// Cart exposes the session cart. Callers must only mutate it while
// EditableCart returns no error; handing out the cart itself keeps the
// read paths (totals, item listing) available in every state.
func (s *Session) Cart() *Cart {
	return s.cart
}

// CustomerID returns the customer attached to this checkout, zero if none.
func (s *Session) CustomerID() int64 {
	return s.customerID
}

// AttachCustomer records which customer the transaction is for. Allowed in
// any state before finalization; it does not affect cart contents.
func (s *Session) AttachCustomer(customerID int64) {
	s.customerID = customerID
}

// Pending returns the built transaction awaiting confirmation, nil outside
// SummaryPresented.
func (s *Session) Pending() *Transaction {
	return s.pending
}

// EditableCart returns the cart for mutation, or a StateError when the cart
// is locked for payment.
func (s *Session) EditableCart() (*Cart, error) {
	if s.state != StateBuilding {
		return nil, &StateError{Op: "edit cart", State: s.state}
	}
	return s.cart, nil
}

// BeginPayment locks the cart and moves to AwaitingPayment. The cart must
// not be empty.
func (s *Session) BeginPayment() error {
	if s.state != StateBuilding {
		return &StateError{Op: "begin payment", State: s.state}
	}
	if s.cart.Len() == 0 {
		return &StateError{Op: "begin payment on empty cart", State: s.state}
	}
	s.state = StateAwaitingPayment
	return nil
}

// PresentSummary builds the transaction for the entered amount and moves to
// SummaryPresented. Insufficient payment leaves the session in
// AwaitingPayment so the amount can be corrected.
func (s *Session) PresentSummary(amountPaid int64) (*Transaction, error) {
	if s.state != StateAwaitingPayment {
		return nil, &StateError{Op: "present summary", State: s.state}
	}

	tx, err := BuildTransaction(s.cart, amountPaid)
	if err != nil {
		return nil, err
	}

	s.pending = tx
	s.state = StateSummaryPresented
	return tx, nil
}

// Finalize completes the cycle after the pending transaction has been
// persisted: the cart is cleared and the session returns to Building for the
// next customer. Callers must only invoke this once submission succeeded; on
// submission failure the session is left as-is so the user can retry.
func (s *Session) Finalize() (*Transaction, error) {
	if s.state != StateSummaryPresented {
		return nil, &StateError{Op: "finalize", State: s.state}
	}

	tx := s.pending
	s.pending = nil
	s.customerID = 0
	s.cart.Clear()
	s.state = StateBuilding
	return tx, nil
}

// Cancel abandons payment and returns to Building. The cart is preserved
// exactly as it was. No-op in Building.
func (s *Session) Cancel() {
	s.pending = nil
	s.state = StateBuilding
}

// sessionJSON is the wire form used to persist a session between requests.
type sessionJSON struct {
	State      State        `json:"state"`
	CustomerID int64        `json:"customer_id,omitempty"`
	Items      []LineItem   `json:"items"`
	Pending    *Transaction `json:"pending,omitempty"`
}

// MarshalJSON serializes the session so the service layer can park it in
// whatever store it likes; the core stays storage-agnostic.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		State:      s.state,
		CustomerID: s.customerID,
		Items:      s.cart.Items(),
		Pending:    s.pending,
	})
}

// UnmarshalJSON restores a persisted session.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w sessionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	s.cart = &Cart{items: w.Items}
	s.state = w.State
	if s.state == "" {
		s.state = StateBuilding
	}
	s.customerID = w.CustomerID
	s.pending = w.Pending
	return nil
}
