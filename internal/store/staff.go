package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gym-pos-service/internal/models"
)

// GetStaffByUsername retrieves a staff account by username. Returns nil, nil
// when the username is unknown so login can fail without leaking which part
// was wrong.
func (s *Store) GetStaffByUsername(ctx context.Context, username string) (*models.StaffUser, error) {
	var staff models.StaffUser
	err := s.db.GetContext(ctx, &staff, "SELECT * FROM staff_users WHERE username = $1", username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetStaffByID retrieves a staff account by ID
func (s *Store) GetStaffByID(ctx context.Context, id int64) (*models.StaffUser, error) {
	var staff models.StaffUser
	err := s.db.GetContext(ctx, &staff, "SELECT * FROM staff_users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("staff not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetStaffUsers retrieves all staff accounts
func (s *Store) GetStaffUsers(ctx context.Context) ([]models.StaffUser, error) {
	var staff []models.StaffUser
	err := s.db.SelectContext(ctx, &staff, "SELECT * FROM staff_users ORDER BY username")
	return staff, err
}

// CreateNotification records a staff-facing alert
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (customer_id, message, level)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, n, query, n.CustomerID, n.Message, n.Level)
}

// GetUnreadNotifications retrieves unread notifications, newest first
func (s *Store) GetUnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.db.SelectContext(ctx, &ns,
		`SELECT * FROM notifications WHERE NOT read ORDER BY created_at DESC`)
	return ns, err
}

// MarkNotificationRead marks a notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1", id)
	return err
}

// HasNotificationSince reports whether a notification at the given level
// already exists for the customer after the cutoff. Keeps the expiry scan
// from re-alerting on every run.
func (s *Store) HasNotificationSince(ctx context.Context, customerID int64, level string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE customer_id = $1 AND level = $2 AND created_at >= $3)`,
		customerID, level, since)
	return exists, err
}
