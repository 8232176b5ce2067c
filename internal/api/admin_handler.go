package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/Eschmerz/Luxury/internal/core"
	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/middleware"
	"github.com/Eschmerz/Luxury/internal/models"
)

// AdminHandler handles the operator endpoints behind the admin token.
type AdminHandler struct {
	userRepo      db.UserRepository
	accessService core.AccessService
	verifier      middleware.TokenVerifier
	driveMeta     func(ctx context.Context) (*drivev3.File, error)
	logger        *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. driveMeta may be nil when Drive
// is not configured.
func NewAdminHandler(
	userRepo db.UserRepository,
	accessService core.AccessService,
	verifier middleware.TokenVerifier,
	driveMeta func(ctx context.Context) (*drivev3.File, error),
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		userRepo:      userRepo,
		accessService: accessService,
		verifier:      verifier,
		driveMeta:     driveMeta,
		logger:        logger,
	}
}

// paylinkFields are the cached-paylink fields cleared by a reset, so the next
// /user-paylink call mints a fresh link in the current mode.
var paylinkFields = []string{
	models.FieldStripePaylinkID,
	models.FieldStripePaylinkURL,
	models.FieldStripePriceID,
	models.FieldStripeProductID,
	models.FieldStripeMode,
}

// ResetPaylink handles POST /admin/reset-paylink. The target user comes from
// the request body, or from a bearer ID token when no uid is given (used when
// operators reset their own link after switching modes).
func (h *AdminHandler) ResetPaylink(c *gin.Context) {
	var req ResetPaylinkRequest
	_ = c.ShouldBindJSON(&req)

	uid := req.UID
	if uid == "" {
		header := c.GetHeader("Authorization")
		if len(header) > 7 && header[:7] == "Bearer " {
			token, err := h.verifier.VerifyIDToken(c.Request.Context(), header[7:])
			if err != nil {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
				return
			}
			uid = token.UID
		}
	}
	if uid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing idToken or uid"})
		return
	}

	if err := h.userRepo.DeleteFields(c.Request.Context(), uid, paylinkFields...); err != nil {
		h.logger.Error("paylink reset failed", zap.String("uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "uid": uid})
}

// TestDrive handles GET /admin/test-drive: fetches the folder metadata so an
// operator can confirm the service account actually reaches the folder.
func (h *AdminHandler) TestDrive(c *gin.Context) {
	if h.driveMeta == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "DRIVE_FOLDER_ID/URL not configured"})
		return
	}
	folder, err := h.driveMeta(c.Request.Context())
	if err != nil {
		h.logger.Warn("drive self-test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "folder": folder})
}

// GrantDrive handles POST /admin/grant-drive: grants folder read access to an
// email manually, outside the payment flow.
func (h *AdminHandler) GrantDrive(c *gin.Context) {
	var req GrantDriveRequest
	_ = c.ShouldBindJSON(&req)
	email := req.Email
	if email == "" {
		email = c.Query("email")
	}
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email required"})
		return
	}

	granted, err := h.accessService.GrantDriveAccess(c.Request.Context(), email)
	if err != nil && !errors.Is(err, core.ErrDriveUnavailable) {
		h.logger.Warn("manual drive grant failed", zap.String("email", email), zap.Error(err))
	}
	if errors.Is(err, core.ErrDriveUnavailable) {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": granted, "email": email})
}
