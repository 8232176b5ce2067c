package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/core"
	"github.com/Eschmerz/Luxury/internal/middleware"
)

// BillingHandler handles the authenticated payment endpoints.
type BillingHandler struct {
	billingService core.BillingService
	defaultOrigin  string
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler. defaultOrigin is used for
// success/cancel/return URLs when the request carries no Origin header.
func NewBillingHandler(bs core.BillingService, defaultOrigin string, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, defaultOrigin: defaultOrigin, logger: logger}
}

// identityFromContext rebuilds the verified identity that the auth middleware
// stored in the Gin context.
func identityFromContext(c *gin.Context) (core.Identity, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		return core.Identity{}, false
	}
	return core.Identity{
		UID:   uid,
		Email: c.GetString(middleware.ContextUserEmail),
		Name:  c.GetString(middleware.ContextUserName),
	}, true
}

func (h *BillingHandler) origin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	return h.defaultOrigin
}

func (h *BillingHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrMissingFields):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("billing operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server error"})
	}
}

// CreateStripeCustomer handles POST /create-stripe-customer. It returns the
// user's linked customer ID, creating one on first call.
func (h *BillingHandler) CreateStripeCustomer(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing idToken"})
		return
	}

	customerID, existed, err := h.billingService.EnsureCustomer(c.Request.Context(), ident)
	if err != nil {
		h.mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, CustomerResponse{CustomerID: customerID, Exists: existed})
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing idToken"})
		return
	}

	var req CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	session, err := h.billingService.CreateCheckoutSession(c.Request.Context(), ident, core.CheckoutRequest{
		UnitAmount:  req.UnitAmount,
		Currency:    req.Currency,
		ProductName: req.ProductName,
		Origin:      h.origin(c),
		SuccessPath: req.SuccessPath,
		CancelPath:  req.CancelPath,
	})
	if err != nil {
		h.mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{URL: session.URL, SessionID: session.ID})
}

// CreateUserPaylink handles POST /user-paylink. The link is created once per
// (user, price, mode) and reused on later calls.
func (h *BillingHandler) CreateUserPaylink(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing idToken"})
		return
	}

	// Body is optional here; ignore malformed JSON the same way an absent
	// body is ignored and fall back to the configured product.
	var req PaylinkRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.billingService.CreateUserPaylink(c.Request.Context(), ident, core.PaylinkRequest{
		Origin:      h.origin(c),
		SuccessPath: req.SuccessPath,
	})
	if err != nil {
		h.mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaylinkResponse{
		URL:           result.URL,
		PaymentLinkID: result.PaymentLinkID,
		PriceID:       result.PriceID,
		ProductID:     result.ProductID,
	})
}

// CreateBillingPortal handles POST /billing-portal.
func (h *BillingHandler) CreateBillingPortal(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing idToken"})
		return
	}

	session, err := h.billingService.CreatePortalSession(c.Request.Context(), ident, h.origin(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{URL: session.URL, SessionID: session.ID})
}
