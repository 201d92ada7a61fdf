package store

import (
	"context"
	"database/sql"
	"fmt"

	"gym-pos-service/internal/models"
)

// CreateTransaction persists a finalized checkout and its items atomically.
// The transaction ID and timestamps are filled in on the passed struct.
//
// The submission ID is unique, so replaying a submission whose first attempt
// already committed (a driver error after commit, a dropped connection)
// adopts the existing row instead of inserting the sale a second time.
func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction, items []models.TransactionItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (customer_id, staff_id, total_amount, amount_paid, change, submission_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (submission_id) DO NOTHING
		RETURNING id, created_at`

	err = tx.GetContext(ctx, txn, query,
		txn.CustomerID, txn.StaffID, txn.TotalAmount, txn.AmountPaid, txn.Change, txn.SubmissionID)
	if err == sql.ErrNoRows {
		// An earlier attempt already persisted this submission, items
		// included. Adopt its row.
		if err := tx.GetContext(ctx, txn,
			"SELECT * FROM transactions WHERE submission_id = $1", txn.SubmissionID); err != nil {
			return fmt.Errorf("failed to load prior submission: %w", err)
		}
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for i := range items {
		items[i].TransactionID = txn.ID
		itemQuery := `
			INSERT INTO transaction_items (transaction_id, product_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`

		if err := tx.GetContext(ctx, &items[i].ID, itemQuery,
			items[i].TransactionID, items[i].ProductID, items[i].Name,
			items[i].Quantity, items[i].UnitPrice); err != nil {
			return fmt.Errorf("failed to insert transaction item: %w", err)
		}
	}

	return tx.Commit()
}

// GetTransactionByID retrieves a transaction by ID
func (s *Store) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.GetContext(ctx, &txn, "SELECT * FROM transactions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetTransactions retrieves all transactions, newest first
func (s *Store) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.SelectContext(ctx, &txns,
		"SELECT * FROM transactions ORDER BY created_at DESC")
	return txns, err
}

// GetTransactionItems retrieves all items for a transaction
func (s *Store) GetTransactionItems(ctx context.Context, transactionID int64) ([]models.TransactionItem, error) {
	var items []models.TransactionItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM transaction_items WHERE transaction_id = $1", transactionID)
	return items, err
}

// ProductSalesRow aggregates units sold and revenue per product over a
// period, for the sales report.
type ProductSalesRow struct {
	ProductID int64  `db:"product_id"`
	Name      string `db:"name"`
	UnitsSold int    `db:"units_sold"`
	Revenue   int64  `db:"revenue"`
}

// GetProductSales aggregates per-product sales between from and to.
func (s *Store) GetProductSales(ctx context.Context, from, to string) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	query := `
		SELECT ti.product_id, ti.name,
		       SUM(ti.quantity) AS units_sold,
		       SUM(ti.quantity * ti.unit_price) AS revenue
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.created_at >= $1 AND t.created_at < $2
		GROUP BY ti.product_id, ti.name
		ORDER BY revenue DESC`
	err := s.db.SelectContext(ctx, &rows, query, from, to)
	return rows, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
