package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/Eschmerz/Luxury/internal/config"
	"github.com/Eschmerz/Luxury/internal/core"
	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/middleware"
)

// SetupRoutes wires all application routes to their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to the
// router before this is called, in main.go.
//
// driveMeta is nil when Drive is not configured; the admin self-test then
// answers with a configuration hint instead of calling out.
func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	verifier middleware.TokenVerifier,
	userRepo db.UserRepository,
	billingService core.BillingService,
	accessService core.AccessService,
	userService core.UserService,
	webhookVerifier WebhookVerifier,
	driveMeta func(ctx context.Context) (*drivev3.File, error),
	folderID, folderURL string,
) {
	authMW := middleware.NewAuthMiddleware(verifier, logger)

	defaultOrigin := ""
	if origins := cfg.Origins(); len(origins) > 0 {
		defaultOrigin = origins[0]
	}

	billingHandler := NewBillingHandler(billingService, defaultOrigin, logger)
	webhookHandler := NewWebhookHandler(webhookVerifier, accessService, logger)
	userHandler := NewUserHandler(userService, folderID, folderURL, logger)
	adminHandler := NewAdminHandler(userRepo, accessService, verifier, driveMeta, logger)

	// Public endpoints. The webhook authenticates itself via the
	// Stripe-Signature header, never via a bearer token.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/config", userHandler.PublicConfig)
	router.POST("/stripe/webhook", webhookHandler.HandleStripeWebhook)

	// Authenticated billing and profile endpoints.
	authed := router.Group("", authMW.VerifyToken())
	{
		authed.POST("/create-stripe-customer", billingHandler.CreateStripeCustomer)
		authed.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
		authed.POST("/user-paylink", billingHandler.CreateUserPaylink)
		authed.POST("/billing-portal", billingHandler.CreateBillingPortal)
		authed.GET("/me", userHandler.Me)
	}

	// /drive is opened by a plain browser navigation, which cannot set an
	// Authorization header, so the token may also ride in the query string.
	router.GET("/drive", authMW.VerifyTokenAllowQuery(), userHandler.Drive)

	// Operator endpoints behind the shared admin token. An empty configured
	// token rejects everything.
	admin := router.Group("/admin", middleware.AdminToken(cfg.StripeAdminToken))
	{
		admin.POST("/reset-paylink", adminHandler.ResetPaylink)
		admin.GET("/test-drive", adminHandler.TestDrive)
		admin.POST("/grant-drive", adminHandler.GrantDrive)
	}

	logger.Info("API routes configured", zap.String("mode", cfg.StripeMode()))
}
