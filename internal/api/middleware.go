package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxStaffKey = "staff"
	ctxTokenKey = "token"
)

// authMiddleware resolves the bearer token and attaches the staff account to
// the request context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing bearer token",
			})
			return
		}

		staff, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ctxStaffKey, staff)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// adminOnly rejects requests from non-admin accounts. Must run after
// authMiddleware.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if staffFrom(c).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func staffFrom(c *gin.Context) *models.StaffUser {
	return c.MustGet(ctxStaffKey).(*models.StaffUser)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
