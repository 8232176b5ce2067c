package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/core"
)

// UserHandler handles the profile and gated-content endpoints.
type UserHandler struct {
	userService core.UserService
	folderID    string
	folderURL   string
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler. folderID/folderURL may be empty
// when Drive is not configured; /drive then answers 500 and /config nulls.
func NewUserHandler(us core.UserService, folderID, folderURL string, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, folderID: folderID, folderURL: folderURL, logger: logger}
}

// Me handles GET /me: the authenticated user's profile including the access
// flag the client shell polls after a purchase.
func (h *UserHandler) Me(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing idToken"})
		return
	}

	user, err := h.userService.Profile(c.Request.Context(), ident)
	if err != nil {
		h.logger.Error("failed to load profile", zap.String("uid", ident.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UID:              user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Access:           user.Access,
		StripeCustomerID: user.StripeCustomerID,
		StripePaylinkURL: user.StripePaylinkURL,
		StripePaylinkID:  user.StripePaylinkID,
	})
}

// Drive handles GET /drive: redirects to the shared folder when the user's
// access flag is set, 403 otherwise.
func (h *UserHandler) Drive(c *gin.Context) {
	if h.folderURL == "" {
		c.String(http.StatusInternalServerError, "Drive not configured")
		return
	}

	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing token"})
		return
	}

	access, err := h.userService.HasAccess(c.Request.Context(), ident.UID)
	if err != nil {
		h.logger.Error("failed to check access", zap.String("uid", ident.UID), zap.Error(err))
		c.String(http.StatusInternalServerError, "server error")
		return
	}
	if !access {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	c.Redirect(http.StatusFound, h.folderURL)
}

// PublicConfig handles GET /config: the non-secret values the client shell
// needs before sign-in.
func (h *UserHandler) PublicConfig(c *gin.Context) {
	resp := PublicConfigResponse{}
	if h.folderID != "" {
		resp.DriveFolderID = &h.folderID
	}
	if h.folderURL != "" {
		resp.DriveFolderURL = &h.folderURL
	}
	c.JSON(http.StatusOK, resp)
}
