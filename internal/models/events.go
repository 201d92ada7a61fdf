package models

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "TRANSACTION_COMPLETED"
	EventTypeSubscriptionExpiring = "SUBSCRIPTION_EXPIRING"
	EventTypeSubscriptionExpired  = "SUBSCRIPTION_EXPIRED"
	EventTypeLowStock             = "LOW_STOCK"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionItemData represents item data in events
type TransactionItemData struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// TransactionCompletedEvent published when a checkout is finalized
type TransactionCompletedEvent struct {
	BaseEvent
	TransactionID int64                 `json:"transaction_id"`
	CustomerID    int64                 `json:"customer_id,omitempty"`
	StaffID       int64                 `json:"staff_id"`
	TotalAmount   int64                 `json:"total_amount"`
	AmountPaid    int64                 `json:"amount_paid"`
	Change        int64                 `json:"change"`
	Items         []TransactionItemData `json:"items"`
}

// SubscriptionExpiringEvent published when a main plan is within the expiry
// warning window
type SubscriptionExpiringEvent struct {
	BaseEvent
	SubscriptionID int64     `json:"subscription_id"`
	CustomerID     int64     `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	Service        string    `json:"service"`
	ExpireDate     time.Time `json:"expire_date"`
	Expired        bool      `json:"expired"`
}

// LowStockEvent published when a sale drops stock below the restock
// threshold
type LowStockEvent struct {
	BaseEvent
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Available   int    `json:"available"`
	Threshold   int    `json:"threshold"`
}
