package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"

	"go.uber.org/zap"
)

// Hours-worked thresholds for attendance status. A completed shift of at
// least 8 hours counts as present, at least 4 as a half day, anything less
// as absent. Records without a clock-out are skipped in summaries.
const (
	presentHours = 8 * time.Hour
	halfDayHours = 4 * time.Hour
)

// AttendanceSummary aggregates a staff member's records over a date range.
type AttendanceSummary struct {
	StaffID     int64   `json:"staff_id"`
	PresentDays int     `json:"present_days"`
	HalfDays    int     `json:"half_days"`
	AbsentDays  int     `json:"absent_days"`
	TotalHours  float64 `json:"total_hours"`
}

// AttendanceService handles staff clock-in/out and range summaries.
type AttendanceService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(store *store.Store) *AttendanceService {
	return &AttendanceService{
		store:  store,
		logger: util.NamedLogger("attendance"),
	}
}

// ClockIn opens today's attendance record for the staff member. A second
// clock-in on the same day is rejected while a shift is open.
func (at *AttendanceService) ClockIn(ctx context.Context, staffID int64, now time.Time) (*models.AttendanceRecord, error) {
	day := truncateToDay(now)

	open, err := at.store.GetOpenAttendance(ctx, staffID, day)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("staff %d already clocked in for %s", staffID, day.Format("2006-01-02"))
	}

	record := &models.AttendanceRecord{
		StaffID: staffID,
		Date:    day,
		ClockIn: &now,
	}
	if err := at.store.CreateAttendanceRecord(ctx, record); err != nil {
		return nil, err
	}

	util.AttendanceClockTotal.WithLabelValues("in").Inc()
	at.logger.Info("Staff clocked in", zap.Int64("staff_id", staffID))
	return record, nil
}

// ClockOut closes today's open attendance record.
func (at *AttendanceService) ClockOut(ctx context.Context, staffID int64, now time.Time) (*models.AttendanceRecord, error) {
	day := truncateToDay(now)

	open, err := at.store.GetOpenAttendance(ctx, staffID, day)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, fmt.Errorf("staff %d has no open shift for %s", staffID, day.Format("2006-01-02"))
	}

	if err := at.store.SetClockOut(ctx, open.ID, now); err != nil {
		return nil, err
	}
	open.ClockOut = &now

	util.AttendanceClockTotal.WithLabelValues("out").Inc()
	at.logger.Info("Staff clocked out", zap.Int64("staff_id", staffID))
	return open, nil
}

// Records returns all attendance records, or one staff member's when
// staffID is non-zero.
func (at *AttendanceService) Records(ctx context.Context, staffID int64) ([]models.AttendanceRecord, error) {
	if staffID != 0 {
		return at.store.GetAttendanceByStaffID(ctx, staffID)
	}
	return at.store.GetAttendanceRecords(ctx)
}

// UpdateTimes corrects a record's clock times (admin fixup for forgotten
// clock-outs).
func (at *AttendanceService) UpdateTimes(ctx context.Context, recordID int64, clockIn, clockOut *time.Time) error {
	return at.store.UpdateAttendanceTimes(ctx, recordID, clockIn, clockOut)
}

// Summary computes a staff member's attendance summary over [from, to].
func (at *AttendanceService) Summary(ctx context.Context, staffID int64, from, to time.Time) (*AttendanceSummary, error) {
	records, err := at.store.GetAttendanceByStaffIDInRange(ctx, staffID, truncateToDay(from), truncateToDay(to))
	if err != nil {
		return nil, err
	}

	summary := Summarize(records)
	summary.StaffID = staffID
	return &summary, nil
}

// Summarize tallies records by the hours-worked thresholds. Pure; incomplete
// records (ongoing shift, missing times) are skipped entirely.
func Summarize(records []models.AttendanceRecord) AttendanceSummary {
	var summary AttendanceSummary
	var total time.Duration

	for _, r := range records {
		if r.ClockIn == nil || r.ClockOut == nil {
			continue
		}

		worked := r.ClockOut.Sub(*r.ClockIn)
		switch {
		case worked >= presentHours:
			summary.PresentDays++
		case worked >= halfDayHours:
			summary.HalfDays++
		default:
			summary.AbsentDays++
		}
		total += worked
	}

	summary.TotalHours = math.Round(total.Hours()*100) / 100
	return summary
}

// StatusFor derives the status label for one completed record.
func StatusFor(r models.AttendanceRecord) string {
	if r.ClockIn == nil || r.ClockOut == nil {
		return ""
	}
	worked := r.ClockOut.Sub(*r.ClockIn)
	switch {
	case worked >= presentHours:
		return models.AttendanceStatusPresent
	case worked >= halfDayHours:
		return models.AttendanceStatusHalfDay
	default:
		return models.AttendanceStatusAbsent
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
