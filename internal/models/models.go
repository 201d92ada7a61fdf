package models

import "time"

// Product types
const (
	ProductTypeSupplement = "supplement"
	ProductTypeEquipment  = "equipment"
	ProductTypeService    = "service"
)

// Product represents an inventory item or a gym service offering.
// Price is in minor units (centavos).
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Price     int64     `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Inventory represents stock on hand for a physical product. Services carry
// no stock row.
type Inventory struct {
	ProductID int64     `db:"product_id" json:"product_id"`
	Available int       `db:"available" json:"available"`
	Reserved  int       `db:"reserved" json:"reserved"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffUser is a dashboard login account.
type StaffUser struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Staff roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Customer is a gym client.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subscription is a customer's service plan purchase (monthly pass, session
// pass, personal instructor and so on).
type Subscription struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Service    string    `db:"service" json:"service"`
	Tag        string    `db:"tag" json:"tag"`
	IsMainPlan bool      `db:"is_main_plan" json:"is_main_plan"`
	Amount     int64     `db:"amount" json:"amount"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	ExpireDate time.Time `db:"expire_date" json:"expire_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Subscription tags
const (
	SubscriptionTagMonthly = "monthly"
	SubscriptionTagSession = "session"
)

// Transaction is a finalized point-of-sale checkout. Amounts are minor
// units; Change is what was handed back to the customer.
type Transaction struct {
	ID          int64     `db:"id" json:"id"`
	CustomerID  int64     `db:"customer_id" json:"customer_id,omitempty"`
	StaffID     int64     `db:"staff_id" json:"staff_id"`
	TotalAmount int64     `db:"total_amount" json:"total_amount"`
	AmountPaid  int64     `db:"amount_paid" json:"amount_paid"`
	Change      int64     `db:"change" json:"change"`
	// SubmissionID identifies the checkout snapshot this row came from.
	// Unique in the database so a retried submission can never insert twice.
	SubmissionID string    `db:"submission_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TransactionItem is one line of a finalized transaction.
type TransactionItem struct {
	ID            int64  `db:"id" json:"id"`
	TransactionID int64  `db:"transaction_id" json:"transaction_id"`
	ProductID     int64  `db:"product_id" json:"product_id"`
	Name          string `db:"name" json:"name"`
	Quantity      int    `db:"quantity" json:"quantity"`
	UnitPrice     int64  `db:"unit_price" json:"unit_price"`
}

// AttendanceRecord is one staff work day. ClockOut is nil while the shift is
// ongoing.
type AttendanceRecord struct {
	ID       int64      `db:"id" json:"id"`
	StaffID  int64      `db:"staff_id" json:"staff_id"`
	Date     time.Time  `db:"date" json:"date"`
	ClockIn  *time.Time `db:"clock_in" json:"clock_in,omitempty"`
	ClockOut *time.Time `db:"clock_out" json:"clock_out,omitempty"`
}

// Attendance statuses derived from hours worked at summary time.
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusHalfDay = "half-day"
	AttendanceStatusAbsent  = "absent"
)

// Notification is a staff-facing alert, currently subscription expiry
// warnings produced by the expiry scan.
type Notification struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Message    string    `db:"message" json:"message"`
	Level      string    `db:"level" json:"level"`
	Read       bool      `db:"read" json:"read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Notification levels
const (
	NotificationLevelWarning = "warning"
	NotificationLevelExpired = "expired"
)

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
