package api

import (
	"net/http"
	"strconv"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/service"

	"github.com/gin-gonic/gin"
)

// attendanceRowView decorates a record with its derived status.
type attendanceRowView struct {
	models.AttendanceRecord
	Status string `json:"status"`
}

// attendanceList returns attendance records, optionally filtered by staff_id.
func (h *Handler) attendanceList(c *gin.Context) {
	var staffID int64
	if raw := c.Query("staff_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff_id"})
			return
		}
		staffID = id
	}

	records, err := h.attendance.Records(c.Request.Context(), staffID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list attendance"})
		return
	}

	rows := make([]attendanceRowView, 0, len(records))
	for _, r := range records {
		rows = append(rows, attendanceRowView{
			AttendanceRecord: r,
			Status:           service.StatusFor(r),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// clockIn opens today's shift for the caller
func (h *Handler) clockIn(c *gin.Context) {
	record, err := h.attendance.ClockIn(c.Request.Context(), staffFrom(c).ID, time.Now())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

// clockOut closes today's shift for the caller
func (h *Handler) clockOut(c *gin.Context) {
	record, err := h.attendance.ClockOut(c.Request.Context(), staffFrom(c).ID, time.Now())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

// attendanceSummary aggregates a staff member's records over a date range.
// Dates are inclusive, format 2006-01-02; the range defaults to the current
// month. staff_id defaults to the caller.
func (h *Handler) attendanceSummary(c *gin.Context) {
	staffID := staffFrom(c).ID
	if raw := c.Query("staff_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff_id"})
			return
		}
		staffID = id
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
	}

	summary, err := h.attendance.Summary(c.Request.Context(), staffID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// updateAttendance corrects a record's clock times. Admin only.
func (h *Handler) updateAttendance(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req struct {
		ClockIn  *time.Time `json:"clock_in"`
		ClockOut *time.Time `json:"clock_out"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.ClockIn == nil && req.ClockOut == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.attendance.UpdateTimes(c.Request.Context(), recordID, req.ClockIn, req.ClockOut); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attendance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// salesReport returns the current month's sales report
func (h *Handler) salesReport(c *gin.Context) {
	report, err := h.reports.Sales(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// inventoryReport returns stocked products grouped by type
func (h *Handler) inventoryReport(c *gin.Context) {
	report, err := h.reports.Inventory(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build inventory report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}
