package service

import (
	"testing"
	"time"

	"gym-pos-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func record(day int, workedHours float64) models.AttendanceRecord {
	in := time.Date(2026, 8, day, 8, 0, 0, 0, time.UTC)
	out := in.Add(time.Duration(workedHours * float64(time.Hour)))
	return models.AttendanceRecord{
		StaffID: 1,
		Date:    time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		ClockIn: &in, ClockOut: &out,
	}
}

func TestSummarizeThresholds(t *testing.T) {
	records := []models.AttendanceRecord{
		record(1, 9),   // present
		record(2, 8),   // present, boundary
		record(3, 7.5), // half-day
		record(4, 4),   // half-day, boundary
		record(5, 3.9), // absent
		record(6, 0.5), // absent
	}

	summary := Summarize(records)

	assert.Equal(t, 2, summary.PresentDays)
	assert.Equal(t, 2, summary.HalfDays)
	assert.Equal(t, 2, summary.AbsentDays)
	assert.Equal(t, 32.9, summary.TotalHours)
}

func TestSummarizeSkipsOngoingShifts(t *testing.T) {
	in := time.Date(2026, 8, 7, 8, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record(1, 9),
		{StaffID: 1, Date: in, ClockIn: &in}, // no clock-out yet
		{StaffID: 1, Date: in},               // no times at all
	}

	summary := Summarize(records)

	assert.Equal(t, 1, summary.PresentDays)
	assert.Equal(t, 0, summary.HalfDays)
	assert.Equal(t, 0, summary.AbsentDays)
	assert.Equal(t, 9.0, summary.TotalHours)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.PresentDays)
	assert.Zero(t, summary.HalfDays)
	assert.Zero(t, summary.AbsentDays)
	assert.Zero(t, summary.TotalHours)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, models.AttendanceStatusPresent, StatusFor(record(1, 8)))
	assert.Equal(t, models.AttendanceStatusHalfDay, StatusFor(record(1, 5)))
	assert.Equal(t, models.AttendanceStatusAbsent, StatusFor(record(1, 2)))
	assert.Equal(t, "", StatusFor(models.AttendanceRecord{}))
}
