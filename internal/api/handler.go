package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gym-pos-service/internal/service"
	"gym-pos-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	auth          *service.AuthService
	checkout      *service.CheckoutService
	subscriptions *service.SubscriptionService
	attendance    *service.AttendanceService
	reports       *service.ReportService
	store         *store.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(
	auth *service.AuthService,
	checkout *service.CheckoutService,
	subscriptions *service.SubscriptionService,
	attendance *service.AttendanceService,
	reports *service.ReportService,
	store *store.Store,
) *Handler {
	return &Handler{
		auth:          auth,
		checkout:      checkout,
		subscriptions: subscriptions,
		attendance:    attendance,
		reports:       reports,
		store:         store,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/login", h.login)

	staff := api.Group("/staff")
	staff.Use(h.authMiddleware())
	{
		staff.POST("/logout", h.logout)

		staff.GET("/show-client", h.listCustomers)
		staff.GET("/show-client/:id/subscriptions", h.customerSubscriptions)
		staff.GET("/exercise-transaction/show", h.listSubscriptions)

		staff.GET("/inventory-lists", h.inventoryList)

		staff.GET("/cart", h.getCart)
		staff.POST("/cart/items", h.addCartItem)
		staff.POST("/cart/items/:id/increase", h.increaseCartItem)
		staff.POST("/cart/items/:id/decrease", h.decreaseCartItem)
		staff.DELETE("/cart/items/:id", h.removeCartItem)
		staff.POST("/cart/customer", h.attachCustomer)
		staff.POST("/cart/begin-payment", h.beginPayment)
		staff.POST("/cart/summary", h.presentSummary)
		staff.POST("/cart/checkout", h.finalizeCheckout)
		staff.POST("/cart/cancel", h.cancelCheckout)
		staff.GET("/cart/show", h.listTransactions)

		staff.GET("/attendance-lists", h.attendanceList)
		staff.POST("/attendance/clock-in", h.clockIn)
		staff.POST("/attendance/clock-out", h.clockOut)
		staff.GET("/attendance/summary", h.attendanceSummary)

		staff.GET("/reports/sales", h.salesReport)
		staff.GET("/reports/inventory", h.inventoryReport)

		staff.GET("/notifications", h.listNotifications)
		staff.POST("/notifications/:id/read", h.markNotificationRead)
	}

	admin := api.Group("/admin")
	admin.Use(h.authMiddleware(), adminOnly())
	{
		admin.POST("/update-attendance/:id", h.updateAttendance)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// login handles staff login
func (h *Handler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	token, staff, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       staff.ID,
			"username": staff.Username,
			"role":     staff.Role,
		},
	})
}

// logout revokes the caller's token
func (h *Handler) logout(c *gin.Context) {
	token := c.MustGet(ctxTokenKey).(string)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// listCustomers returns all gym clients
func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.subscriptions.Customers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list customers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// customerSubscriptions returns one client's subscription history
func (h *Handler) customerSubscriptions(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	subs, err := h.subscriptions.CustomerSubscriptions(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subs})
}

// listSubscriptions returns all subscription transactions
func (h *Handler) listSubscriptions(c *gin.Context) {
	subs, err := h.subscriptions.Subscriptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subscriptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subs})
}

// inventoryList returns all products with stock counts
func (h *Handler) inventoryList(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.store.GetProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	stock, err := h.store.GetInventoryList(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inventory"})
		return
	}

	available := make(map[int64]int, len(stock))
	for _, inv := range stock {
		available[inv.ProductID] = inv.Available
	}

	type row struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Type      string `json:"type"`
		Price     int64  `json:"price"`
		Available int    `json:"available"`
	}
	rows := make([]row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row{
			ID: p.ID, Name: p.Name, Type: p.Type, Price: p.Price,
			Available: available[p.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// listNotifications returns unread staff notifications
func (h *Handler) listNotifications(c *gin.Context) {
	ns, err := h.subscriptions.Notifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ns})
}

// markNotificationRead dismisses a notification
func (h *Handler) markNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.subscriptions.MarkNotificationRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
