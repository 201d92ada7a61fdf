package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gym-pos-service/internal/catalog"
	"gym-pos-service/internal/models"
	"gym-pos-service/internal/pos"
	"gym-pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutStore is the slice of the database store the checkout flow needs.
type CheckoutStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	CreateTransaction(ctx context.Context, txn *models.Transaction, items []models.TransactionItem) error
}

// SessionStore persists serialized checkout sessions between requests.
type SessionStore interface {
	SaveSession(ctx context.Context, staffID int64, data []byte, ttl time.Duration) error
	LoadSession(ctx context.Context, staffID int64) ([]byte, error)
	DeleteSession(ctx context.Context, staffID int64) error
}

// StockManager reserves, releases and commits physical stock.
type StockManager interface {
	Reserve(ctx context.Context, productID int64, quantity int) (bool, error)
	Release(ctx context.Context, productID int64, quantity int) error
	Commit(ctx context.Context, productID int64, quantity int) (int, error)
}

// CheckoutEventPublisher publishes checkout domain events.
type CheckoutEventPublisher interface {
	PublishTransactionCompleted(ctx context.Context, event *models.TransactionCompletedEvent) error
	PublishLowStock(ctx context.Context, event *models.LowStockEvent) error
}

// SubmissionError wraps a failure to persist a finalized transaction. The
// checkout session is guaranteed untouched when this is returned, so the
// staff member can retry without re-entering items or payment.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// ErrOutOfStock is returned (wrapped in SubmissionError) when an item can no
// longer be covered by available stock at finalization time.
var ErrOutOfStock = errors.New("insufficient stock")

// CheckoutService drives the point-of-sale checkout flow. The cart and state
// machine live in the pos package; this service loads the session, applies
// the exclusivity policy from the catalog, and handles persistence, stock
// movement and event publishing around finalization.
type CheckoutService struct {
	store      CheckoutStore
	sessions   SessionStore
	stock      StockManager
	events     CheckoutEventPublisher
	catalog    *catalog.Catalog
	sessionTTL time.Duration
	lowStock   int
	logger     *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	store CheckoutStore,
	sessions SessionStore,
	stock StockManager,
	events CheckoutEventPublisher,
	cat *catalog.Catalog,
	sessionTTL time.Duration,
	lowStockThreshold int,
) *CheckoutService {
	return &CheckoutService{
		store:      store,
		sessions:   sessions,
		stock:      stock,
		events:     events,
		catalog:    cat,
		sessionTTL: sessionTTL,
		lowStock:   lowStockThreshold,
		logger:     util.NamedLogger("checkout"),
	}
}

// Session returns the staff member's current checkout session, creating a
// fresh one if none is persisted.
func (cs *CheckoutService) Session(ctx context.Context, staffID int64) (*pos.Session, error) {
	data, err := cs.sessions.LoadSession(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if data == nil {
		return pos.NewSession(), nil
	}

	sess := pos.NewSession()
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

func (cs *CheckoutService) save(ctx context.Context, staffID int64, sess *pos.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := cs.sessions.SaveSession(ctx, staffID, data, cs.sessionTTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// AddProduct adds one unit of the product to the staff member's cart.
// Service-type products are checked against the exclusivity catalog first;
// a conflicting add is rejected with *pos.ConflictError and the cart is not
// touched.
func (cs *CheckoutService) AddProduct(ctx context.Context, staffID, productID int64) (*pos.Session, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.AddProduct")
	defer span.End()

	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	cart, err := sess.EditableCart()
	if err != nil {
		return nil, err
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Type == models.ProductTypeService {
		if conflicts := cs.catalog.ConflictingItems(cart.Names(), product.Name); len(conflicts) > 0 {
			util.ConflictRejectionsTotal.Inc()
			return nil, &pos.ConflictError{Service: product.Name, ConflictsWith: conflicts}
		}
	}

	cart.AddItem(pos.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price})

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// IncreaseQuantity adds one unit of an item already in the cart.
func (cs *CheckoutService) IncreaseQuantity(ctx context.Context, staffID, productID int64) (*pos.Session, error) {
	return cs.editCart(ctx, staffID, func(cart *pos.Cart) {
		cart.IncreaseQuantity(productID)
	})
}

// DecreaseQuantity removes one unit, dropping the item at zero.
func (cs *CheckoutService) DecreaseQuantity(ctx context.Context, staffID, productID int64) (*pos.Session, error) {
	return cs.editCart(ctx, staffID, func(cart *pos.Cart) {
		cart.DecreaseQuantity(productID)
	})
}

// RemoveItem removes an item from the cart entirely.
func (cs *CheckoutService) RemoveItem(ctx context.Context, staffID, productID int64) (*pos.Session, error) {
	return cs.editCart(ctx, staffID, func(cart *pos.Cart) {
		cart.RemoveItem(productID)
	})
}

func (cs *CheckoutService) editCart(ctx context.Context, staffID int64, edit func(*pos.Cart)) (*pos.Session, error) {
	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	cart, err := sess.EditableCart()
	if err != nil {
		return nil, err
	}

	edit(cart)

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AttachCustomer records the customer the checkout is for.
func (cs *CheckoutService) AttachCustomer(ctx context.Context, staffID, customerID int64) (*pos.Session, error) {
	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	sess.AttachCustomer(customerID)

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// BeginPayment locks the cart for payment entry.
func (cs *CheckoutService) BeginPayment(ctx context.Context, staffID int64) (*pos.Session, error) {
	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if err := sess.BeginPayment(); err != nil {
		return nil, err
	}

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// PresentSummary validates the tendered amount and builds the pending
// transaction. Insufficient payment returns *pos.InsufficientPaymentError
// and the session stays in AwaitingPayment for a corrected amount.
func (cs *CheckoutService) PresentSummary(ctx context.Context, staffID, amountPaid int64) (*pos.Transaction, error) {
	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	tx, err := sess.PresentSummary(amountPaid)
	if err != nil {
		var insufficient *pos.InsufficientPaymentError
		if errors.As(err, &insufficient) {
			util.InsufficientPaymentTotal.Inc()
		}
		return nil, err
	}

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return tx, nil
}

// Cancel abandons payment and returns the session to Building, cart intact.
func (cs *CheckoutService) Cancel(ctx context.Context, staffID int64) (*pos.Session, error) {
	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	sess.Cancel()

	if err := cs.save(ctx, staffID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Finalize persists the pending transaction after the staff member confirms
// the summary: stock is reserved and committed for physical items, the
// transaction row is written, and a TransactionCompleted event is published.
// On ANY persistence failure the session is left exactly as it was
// (SummaryPresented, snapshot intact) so the submission can be retried.
func (cs *CheckoutService) Finalize(ctx context.Context, staffID int64) (*models.Transaction, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Finalize")
	defer span.End()

	sess, err := cs.Session(ctx, staffID)
	if err != nil {
		return nil, err
	}

	pending := sess.Pending()
	if pending == nil {
		return nil, &pos.StateError{Op: "finalize", State: sess.State()}
	}

	stocked, err := cs.stockedQuantities(ctx, pending.Items)
	if err != nil {
		return nil, &SubmissionError{Cause: err}
	}

	reserved, err := cs.reserveAll(ctx, pending.Items, stocked)
	if err != nil {
		cs.releaseAll(ctx, reserved)
		return nil, err
	}

	txn := &models.Transaction{
		CustomerID:  sess.CustomerID(),
		StaffID:     staffID,
		TotalAmount: pending.TotalAmount,
		AmountPaid:  pending.AmountPaid,
		Change:      pending.Change,
		// The key is derived from the snapshot, not generated per call, so
		// every retry of the same snapshot carries the same key and the
		// store can refuse to persist the sale twice.
		SubmissionID: submissionKey(staffID, pending),
	}
	items := make([]models.TransactionItem, 0, len(pending.Items))
	for _, li := range pending.Items {
		items = append(items, models.TransactionItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}

	if err := cs.store.CreateTransaction(ctx, txn, items); err != nil {
		util.TransactionsFailedTotal.WithLabelValues("db_error").Inc()
		cs.releaseAll(ctx, reserved)
		return nil, &SubmissionError{Cause: err}
	}

	cs.commitAll(ctx, reserved)

	event := &models.TransactionCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTransactionCompleted,
			Timestamp: time.Now(),
		},
		TransactionID: txn.ID,
		CustomerID:    txn.CustomerID,
		StaffID:       txn.StaffID,
		TotalAmount:   txn.TotalAmount,
		AmountPaid:    txn.AmountPaid,
		Change:        txn.Change,
		Items:         eventItems(pending.Items),
	}
	if err := cs.events.PublishTransactionCompleted(ctx, event); err != nil {
		cs.logger.Error("Failed to publish TransactionCompleted event", zap.Error(err))
	}

	if _, err := sess.Finalize(); err != nil {
		// Should be unreachable: pending was non-nil above.
		return nil, err
	}
	if err := cs.save(ctx, staffID, sess); err != nil {
		cs.logger.Error("Failed to reset session after finalize", zap.Error(err))
	}

	util.TransactionsCompletedTotal.Inc()
	util.TransactionAmount.Observe(float64(txn.TotalAmount))
	cs.logger.Info("Transaction finalized",
		zap.Int64("transaction_id", txn.ID),
		zap.Int64("staff_id", staffID),
		zap.Int64("total_amount", txn.TotalAmount))

	return txn, nil
}

// submissionKey identifies one pending snapshot on one staff terminal. The
// snapshot timestamp is fixed when the summary is built and survives session
// round-trips through Redis, so a retry reproduces the same key.
func submissionKey(staffID int64, pending *pos.Transaction) string {
	return fmt.Sprintf("%d-%d", staffID, pending.Timestamp.UnixNano())
}

// stockedQuantities maps product id to the product for every cart item that
// carries physical stock. Service items are excluded.
func (cs *CheckoutService) stockedQuantities(ctx context.Context, items []pos.LineItem) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, li := range items {
		ids = append(ids, li.ProductID)
	}

	products, err := cs.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	stocked := make(map[int64]*models.Product)
	for i := range products {
		if products[i].Type != models.ProductTypeService {
			stocked[products[i].ID] = &products[i]
		}
	}
	return stocked, nil
}

// reserveAll reserves stock for every stocked item, returning the items it
// managed to reserve so a failure can be compensated.
func (cs *CheckoutService) reserveAll(ctx context.Context, items []pos.LineItem, stocked map[int64]*models.Product) ([]pos.LineItem, error) {
	var reserved []pos.LineItem
	for _, li := range items {
		if _, ok := stocked[li.ProductID]; !ok {
			continue
		}

		ok, err := cs.stock.Reserve(ctx, li.ProductID, li.Quantity)
		if err != nil {
			util.TransactionsFailedTotal.WithLabelValues("stock_error").Inc()
			return reserved, &SubmissionError{Cause: fmt.Errorf("failed to reserve stock for %q: %w", li.Name, err)}
		}
		if !ok {
			util.TransactionsFailedTotal.WithLabelValues("out_of_stock").Inc()
			return reserved, &SubmissionError{Cause: fmt.Errorf("%w for %q", ErrOutOfStock, li.Name)}
		}
		reserved = append(reserved, li)
	}
	return reserved, nil
}

// releaseAll rolls back reservations after a failed submission.
func (cs *CheckoutService) releaseAll(ctx context.Context, reserved []pos.LineItem) {
	for _, li := range reserved {
		if err := cs.stock.Release(ctx, li.ProductID, li.Quantity); err != nil {
			cs.logger.Error("Failed to release reserved stock",
				zap.Int64("product_id", li.ProductID),
				zap.Error(err))
		}
	}
}

// commitAll turns reservations into final deductions and raises low-stock
// events as levels cross the threshold.
func (cs *CheckoutService) commitAll(ctx context.Context, reserved []pos.LineItem) {
	start := time.Now()
	defer func() {
		util.StockCommitLatency.Observe(time.Since(start).Seconds())
	}()

	for _, li := range reserved {
		available, err := cs.stock.Commit(ctx, li.ProductID, li.Quantity)
		if err != nil {
			cs.logger.Error("Failed to commit stock",
				zap.Int64("product_id", li.ProductID),
				zap.Error(err))
			continue
		}

		if available <= cs.lowStock {
			event := &models.LowStockEvent{
				BaseEvent: models.BaseEvent{
					EventID:   uuid.New().String(),
					EventType: models.EventTypeLowStock,
					Timestamp: time.Now(),
				},
				ProductID:   li.ProductID,
				ProductName: li.Name,
				Available:   available,
				Threshold:   cs.lowStock,
			}
			if err := cs.events.PublishLowStock(ctx, event); err != nil {
				cs.logger.Error("Failed to publish LowStock event", zap.Error(err))
			}
		}
	}
}

func eventItems(items []pos.LineItem) []models.TransactionItemData {
	out := make([]models.TransactionItemData, 0, len(items))
	for _, li := range items {
		out = append(out, models.TransactionItemData{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}
	return out
}
