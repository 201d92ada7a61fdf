package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"gym-pos-service/internal/pos"
	"gym-pos-service/internal/service"

	"github.com/gin-gonic/gin"
)

// cartItemView is the JSON rendering of a cart line item.
type cartItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// cartView is the JSON rendering of a checkout session.
type cartView struct {
	State      pos.State      `json:"state"`
	CustomerID int64          `json:"customer_id,omitempty"`
	Items      []cartItemView `json:"items"`
	Total      string         `json:"total"`
	Summary    *summaryView   `json:"summary,omitempty"`
}

// summaryView renders a pending transaction.
type summaryView struct {
	Total      string `json:"total"`
	AmountPaid string `json:"amount_paid"`
	Change     string `json:"change"`
}

// renderLineItems formats line items for a response. Money leaves the API
// only as formatted decimal strings, never raw minor units.
func renderLineItems(items []pos.LineItem) []cartItemView {
	out := make([]cartItemView, 0, len(items))
	for _, li := range items {
		out = append(out, cartItemView{
			ProductID: li.ProductID,
			Name:      li.Name,
			UnitPrice: pos.FormatAmount(li.UnitPrice),
			Quantity:  li.Quantity,
			Subtotal:  pos.FormatAmount(li.Subtotal()),
		})
	}
	return out
}

func renderSession(sess *pos.Session) cartView {
	view := cartView{
		State:      sess.State(),
		CustomerID: sess.CustomerID(),
		Items:      renderLineItems(sess.Cart().Items()),
		Total:      pos.FormatAmount(sess.Cart().Total()),
	}
	if pending := sess.Pending(); pending != nil {
		view.Summary = &summaryView{
			Total:      pos.FormatAmount(pending.TotalAmount),
			AmountPaid: pos.FormatAmount(pending.AmountPaid),
			Change:     pos.FormatAmount(pending.Change),
		}
	}
	return view
}

// renderCheckoutError maps core checkout errors onto HTTP responses. All of
// them are locally recoverable by the staff member.
func renderCheckoutError(c *gin.Context, err error) {
	var conflict *pos.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "service_conflict",
			"service":        conflict.Service,
			"conflicts_with": conflict.ConflictsWith,
			"message":        conflict.Error(),
		})
		return
	}

	var insufficient *pos.InsufficientPaymentError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "insufficient_payment",
			"total":     pos.FormatAmount(insufficient.Total),
			"paid":      pos.FormatAmount(insufficient.AmountPaid),
			"shortfall": pos.FormatAmount(insufficient.Shortfall()),
		})
		return
	}

	var stateErr *pos.StateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_state",
			"state":   stateErr.State,
			"message": stateErr.Error(),
		})
		return
	}

	var submission *service.SubmissionError
	if errors.As(err, &submission) {
		// The session is preserved; the client may retry.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "submission_failed",
			"retryable": true,
			"message":   submission.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "checkout_failed",
		"details": err.Error(),
	})
}

// getCart returns the staff member's current checkout session
func (h *Handler) getCart(c *gin.Context) {
	sess, err := h.checkout.Session(c.Request.Context(), staffFrom(c).ID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

// addCartItem adds a product to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sess, err := h.checkout.AddProduct(c.Request.Context(), staffFrom(c).ID, req.ProductID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

func (h *Handler) increaseCartItem(c *gin.Context) {
	h.editCartItem(c, h.checkout.IncreaseQuantity)
}

func (h *Handler) decreaseCartItem(c *gin.Context) {
	h.editCartItem(c, h.checkout.DecreaseQuantity)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	h.editCartItem(c, h.checkout.RemoveItem)
}

func (h *Handler) editCartItem(c *gin.Context, edit func(ctx context.Context, staffID, productID int64) (*pos.Session, error)) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	sess, err := edit(c.Request.Context(), staffFrom(c).ID, productID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

// attachCustomer ties the checkout to a customer
func (h *Handler) attachCustomer(c *gin.Context) {
	var req struct {
		CustomerID int64 `json:"customer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sess, err := h.checkout.AttachCustomer(c.Request.Context(), staffFrom(c).ID, req.CustomerID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

// beginPayment locks the cart for payment entry
func (h *Handler) beginPayment(c *gin.Context) {
	sess, err := h.checkout.BeginPayment(c.Request.Context(), staffFrom(c).ID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

// presentSummary validates the tendered amount and builds the summary
func (h *Handler) presentSummary(c *gin.Context) {
	var req struct {
		AmountPaid string `json:"amount_paid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	amount, err := pos.ParseAmount(req.AmountPaid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount", "details": err.Error()})
		return
	}

	tx, err := h.checkout.PresentSummary(c.Request.Context(), staffFrom(c).ID, amount)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       pos.FormatAmount(tx.TotalAmount),
		"amount_paid": pos.FormatAmount(tx.AmountPaid),
		"change":      pos.FormatAmount(tx.Change),
		"items":       renderLineItems(tx.Items),
	})
}

// finalizeCheckout persists the confirmed transaction
func (h *Handler) finalizeCheckout(c *gin.Context) {
	txn, err := h.checkout.Finalize(c.Request.Context(), staffFrom(c).ID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction_id": txn.ID,
		"total":          pos.FormatAmount(txn.TotalAmount),
		"amount_paid":    pos.FormatAmount(txn.AmountPaid),
		"change":         pos.FormatAmount(txn.Change),
	})
}

// cancelCheckout abandons payment, keeping the cart
func (h *Handler) cancelCheckout(c *gin.Context) {
	sess, err := h.checkout.Cancel(c.Request.Context(), staffFrom(c).ID)
	if err != nil {
		renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderSession(sess))
}

// listTransactions returns finalized transactions with their items
func (h *Handler) listTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	txns, err := h.store.GetTransactions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txns})
}
