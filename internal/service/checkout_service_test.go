package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gym-pos-service/internal/catalog"
	"gym-pos-service/internal/models"
	"gym-pos-service/internal/pos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckoutStore struct {
	products map[int64]*models.Product
	// createErr fails the insert outright; errAfterInsert persists the row
	// first and then reports a failure, the way a connection dropped after
	// commit does. Both are consumed by the caller clearing them.
	createErr      error
	errAfterInsert error
	created        []*models.Transaction
}

func (f *fakeCheckoutStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	return p, nil
}

func (f *fakeCheckoutStore) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCheckoutStore) CreateTransaction(_ context.Context, txn *models.Transaction, items []models.TransactionItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, prev := range f.created {
		if prev.SubmissionID != "" && prev.SubmissionID == txn.SubmissionID {
			txn.ID = prev.ID
			txn.CreatedAt = prev.CreatedAt
			return nil
		}
	}
	txn.ID = int64(len(f.created) + 1)
	txn.CreatedAt = time.Now()
	f.created = append(f.created, txn)
	if f.errAfterInsert != nil {
		err := f.errAfterInsert
		f.errAfterInsert = nil
		return err
	}
	return nil
}

type fakeSessionStore struct {
	data map[int64][]byte
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{data: make(map[int64][]byte)}
}

func (f *fakeSessionStore) SaveSession(_ context.Context, staffID int64, data []byte, _ time.Duration) error {
	f.data[staffID] = data
	return nil
}

func (f *fakeSessionStore) LoadSession(_ context.Context, staffID int64) ([]byte, error) {
	return f.data[staffID], nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, staffID int64) error {
	delete(f.data, staffID)
	return nil
}

type stockOp struct {
	op        string
	productID int64
	quantity  int
}

type fakeStock struct {
	denied    map[int64]bool
	commitErr error
	ops       []stockOp
}

func (f *fakeStock) Reserve(_ context.Context, productID int64, quantity int) (bool, error) {
	if f.denied[productID] {
		return false, nil
	}
	f.ops = append(f.ops, stockOp{"reserve", productID, quantity})
	return true, nil
}

func (f *fakeStock) Release(_ context.Context, productID int64, quantity int) error {
	f.ops = append(f.ops, stockOp{"release", productID, quantity})
	return nil
}

func (f *fakeStock) Commit(_ context.Context, productID int64, quantity int) (int, error) {
	if f.commitErr != nil {
		return 0, f.commitErr
	}
	f.ops = append(f.ops, stockOp{"commit", productID, quantity})
	return 100, nil
}

type fakePublisher struct {
	completed []*models.TransactionCompletedEvent
	lowStock  []*models.LowStockEvent
}

func (f *fakePublisher) PublishTransactionCompleted(_ context.Context, e *models.TransactionCompletedEvent) error {
	f.completed = append(f.completed, e)
	return nil
}

func (f *fakePublisher) PublishLowStock(_ context.Context, e *models.LowStockEvent) error {
	f.lowStock = append(f.lowStock, e)
	return nil
}

func newTestCheckout(t *testing.T) (*CheckoutService, *fakeCheckoutStore, *fakeStock, *fakePublisher) {
	t.Helper()

	store := &fakeCheckoutStore{products: map[int64]*models.Product{
		1: {ID: 1, Name: "Whey Protein 1kg", Type: models.ProductTypeSupplement, Price: 10000},
		2: {ID: 2, Name: "Creatine 300g", Type: models.ProductTypeSupplement, Price: 5000},
		3: {ID: 3, Name: "Gym per Session", Type: models.ProductTypeService, Price: 5000},
		4: {ID: 4, Name: "Gym + Treadmill", Type: models.ProductTypeService, Price: 15000},
	}}
	stock := &fakeStock{denied: make(map[int64]bool)}
	events := &fakePublisher{}

	cs := NewCheckoutService(store, newFakeSessionStore(), stock, events,
		catalog.Default(), time.Hour, 5)
	return cs, store, stock, events
}

const staffID = int64(9)

func TestAddProductRejectsServiceConflict(t *testing.T) {
	cs, _, _, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 3) // Gym per Session
	require.NoError(t, err)

	_, err = cs.AddProduct(ctx, staffID, 4) // Gym + Treadmill
	var conflict *pos.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Gym + Treadmill", conflict.Service)
	assert.Equal(t, []string{"Gym per Session"}, conflict.ConflictsWith)

	// The rejected add must not have touched the persisted cart.
	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gym per Session"}, sess.Cart().Names())
}

func TestAddProductSupplementsUnconstrained(t *testing.T) {
	cs, _, _, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 3)
	require.NoError(t, err)
	_, err = cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)

	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	require.Equal(t, 2, sess.Cart().Len())
	assert.Equal(t, int64(25000), sess.Cart().Total())
}

func TestCheckoutHappyPath(t *testing.T) {
	cs, store, stock, events := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.IncreaseQuantity(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.AddProduct(ctx, staffID, 2)
	require.NoError(t, err)
	_, err = cs.AttachCustomer(ctx, staffID, 42)
	require.NoError(t, err)

	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)

	summary, err := cs.PresentSummary(ctx, staffID, 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), summary.TotalAmount)
	assert.Equal(t, int64(5000), summary.Change)

	txn, err := cs.Finalize(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.CustomerID)
	assert.Equal(t, staffID, txn.StaffID)
	assert.Equal(t, int64(25000), txn.TotalAmount)

	require.Len(t, store.created, 1)
	require.Len(t, events.completed, 1)
	assert.Equal(t, txn.ID, events.completed[0].TransactionID)
	assert.Len(t, events.completed[0].Items, 2)

	// Both supplements reserved then committed.
	assert.Equal(t, []stockOp{
		{"reserve", 1, 2},
		{"reserve", 2, 1},
		{"commit", 1, 2},
		{"commit", 2, 1},
	}, stock.ops)

	// Session reset for the next customer.
	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateBuilding, sess.State())
	assert.Equal(t, 0, sess.Cart().Len())
}

func TestFinalizeSkipsStockForServices(t *testing.T) {
	cs, store, stock, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 3)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)
	_, err = cs.PresentSummary(ctx, staffID, 5000)
	require.NoError(t, err)

	_, err = cs.Finalize(ctx, staffID)
	require.NoError(t, err)

	assert.Empty(t, stock.ops)
	require.Len(t, store.created, 1)
}

func TestInsufficientPaymentKeepsSessionAwaiting(t *testing.T) {
	cs, _, _, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)

	_, err = cs.PresentSummary(ctx, staffID, 9000)
	var insufficient *pos.InsufficientPaymentError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1000), insufficient.Shortfall())

	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateAwaitingPayment, sess.State())
}

func TestSubmissionFailurePreservesSession(t *testing.T) {
	cs, store, stock, events := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)
	_, err = cs.PresentSummary(ctx, staffID, 10000)
	require.NoError(t, err)

	store.createErr = errors.New("connection refused")

	_, err = cs.Finalize(ctx, staffID)
	var submission *SubmissionError
	require.ErrorAs(t, err, &submission)

	// Reservation rolled back, nothing committed or published.
	assert.Equal(t, []stockOp{
		{"reserve", 1, 1},
		{"release", 1, 1},
	}, stock.ops)
	assert.Empty(t, events.completed)

	// Session intact for a retry.
	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateSummaryPresented, sess.State())
	require.NotNil(t, sess.Pending())
	assert.Equal(t, int64(10000), sess.Pending().TotalAmount)

	// Retry after the store recovers succeeds against the same snapshot.
	store.createErr = nil
	txn, err := cs.Finalize(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), txn.TotalAmount)
}

func TestRetryAfterAmbiguousFailureDoesNotDuplicate(t *testing.T) {
	cs, store, stock, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)
	_, err = cs.PresentSummary(ctx, staffID, 10000)
	require.NoError(t, err)

	// The insert reaches the database but the driver reports a failure
	// anyway, as with a connection dropped after commit.
	store.errAfterInsert = errors.New("driver: bad connection")

	_, err = cs.Finalize(ctx, staffID)
	var submission *SubmissionError
	require.ErrorAs(t, err, &submission)

	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateSummaryPresented, sess.State())

	// The retry adopts the row the first attempt persisted instead of
	// inserting the same sale again.
	txn, err := cs.Finalize(ctx, staffID)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, store.created[0].ID, txn.ID)

	// Stock for the sale moves exactly once: the failed attempt released
	// its reservation, the retry committed.
	assert.Equal(t, []stockOp{
		{"reserve", 1, 1},
		{"release", 1, 1},
		{"reserve", 1, 1},
		{"commit", 1, 1},
	}, stock.ops)

	sess, err = cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateBuilding, sess.State())
}

func TestCommitFailureDoesNotRaiseLowStock(t *testing.T) {
	cs, store, stock, events := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)
	_, err = cs.PresentSummary(ctx, staffID, 10000)
	require.NoError(t, err)

	stock.commitErr = errors.New("commit stock script failed")

	// The sale still goes through; a failed commit must not masquerade as
	// zero availability.
	txn, err := cs.Finalize(ctx, staffID)
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	require.Len(t, store.created, 1)
	assert.Empty(t, events.lowStock)
}

func TestFinalizeOutOfStockReleasesPartialReservations(t *testing.T) {
	cs, _, stock, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.AddProduct(ctx, staffID, 2)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)
	_, err = cs.PresentSummary(ctx, staffID, 20000)
	require.NoError(t, err)

	stock.denied[2] = true

	_, err = cs.Finalize(ctx, staffID)
	require.ErrorIs(t, err, ErrOutOfStock)

	// The successful first reservation was rolled back.
	assert.Equal(t, []stockOp{
		{"reserve", 1, 1},
		{"release", 1, 1},
	}, stock.ops)

	sess, err := cs.Session(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateSummaryPresented, sess.State())
}

func TestCancelReturnsToBuildingWithCartIntact(t *testing.T) {
	cs, _, _, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)

	sess, err := cs.Cancel(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, pos.StateBuilding, sess.State())
	assert.Equal(t, 1, sess.Cart().Len())
}

func TestCartEditsRejectedDuringPayment(t *testing.T) {
	cs, _, _, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, staffID, 1)
	require.NoError(t, err)
	_, err = cs.BeginPayment(ctx, staffID)
	require.NoError(t, err)

	_, err = cs.AddProduct(ctx, staffID, 2)
	var stateErr *pos.StateError
	require.ErrorAs(t, err, &stateErr)

	_, err = cs.RemoveItem(ctx, staffID, 1)
	require.ErrorAs(t, err, &stateErr)
}
