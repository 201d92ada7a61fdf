package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gym-pos-service/internal/models"
)

// GetAttendanceRecords retrieves all attendance records, newest first
func (s *Store) GetAttendanceRecords(ctx context.Context) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM attendance_records ORDER BY date DESC, staff_id")
	return records, err
}

// GetAttendanceByStaffID retrieves attendance records for one staff member
func (s *Store) GetAttendanceByStaffID(ctx context.Context, staffID int64) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM attendance_records WHERE staff_id = $1 ORDER BY date DESC", staffID)
	return records, err
}

// GetAttendanceByStaffIDInRange retrieves a staff member's records between
// from and to inclusive.
func (s *Store) GetAttendanceByStaffIDInRange(ctx context.Context, staffID int64, from, to time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT * FROM attendance_records
		 WHERE staff_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date`, staffID, from, to)
	return records, err
}

// GetOpenAttendance retrieves today's record without a clock-out for the
// staff member, nil if none.
func (s *Store) GetOpenAttendance(ctx context.Context, staffID int64, date time.Time) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := s.db.GetContext(ctx, &record,
		`SELECT * FROM attendance_records
		 WHERE staff_id = $1 AND date = $2 AND clock_out IS NULL`, staffID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateAttendanceRecord inserts a clock-in record
func (s *Store) CreateAttendanceRecord(ctx context.Context, record *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (staff_id, date, clock_in)
		VALUES ($1, $2, $3)
		RETURNING id`

	return s.db.GetContext(ctx, &record.ID, query,
		record.StaffID, record.Date, record.ClockIn)
}

// SetClockOut records the end of a shift
func (s *Store) SetClockOut(ctx context.Context, recordID int64, clockOut time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE attendance_records SET clock_out = $1 WHERE id = $2 AND clock_out IS NULL",
		clockOut, recordID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("attendance record %d not open", recordID)
	}
	return nil
}

// UpdateAttendanceTimes corrects a record's clock times (admin fixup). A nil
// time leaves the existing value in place.
func (s *Store) UpdateAttendanceTimes(ctx context.Context, recordID int64, clockIn, clockOut *time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE attendance_records
		 SET clock_in = COALESCE($1, clock_in), clock_out = COALESCE($2, clock_out)
		 WHERE id = $3`,
		clockIn, clockOut, recordID)
	return err
}
