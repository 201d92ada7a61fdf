package store

import (
	"context"
	"database/sql"
	"fmt"

	"gym-pos-service/internal/models"
)

// GetCustomers retrieves all customers
func (s *Store) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, "SELECT * FROM customers ORDER BY name")
	return customers, err
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer creates a new customer
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, customer, query,
		customer.Name, customer.Email, customer.Phone)
}

// GetSubscriptionsByCustomerID retrieves a customer's subscriptions, newest
// first
func (s *Store) GetSubscriptionsByCustomerID(ctx context.Context, customerID int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return subs, err
}

// GetSubscriptions retrieves all subscriptions, newest first
func (s *Store) GetSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions ORDER BY created_at DESC")
	return subs, err
}

// GetSubscriptionsByTag retrieves subscriptions with the given tag
func (s *Store) GetSubscriptionsByTag(ctx context.Context, tag string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions WHERE tag = $1 ORDER BY created_at DESC", tag)
	return subs, err
}

// GetMainPlansExpiringBefore retrieves active main-plan subscriptions whose
// expiry date falls before the cutoff. Used by the expiry scan.
func (s *Store) GetMainPlansExpiringBefore(ctx context.Context, cutoff string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions WHERE is_main_plan AND expire_date < $1 ORDER BY expire_date", cutoff)
	return subs, err
}

// CreateSubscription creates a new subscription
func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (customer_id, service, tag, is_main_plan, amount, start_date, expire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, sub, query,
		sub.CustomerID, sub.Service, sub.Tag, sub.IsMainPlan,
		sub.Amount, sub.StartDate, sub.ExpireDate)
}
