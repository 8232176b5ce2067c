package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/Eschmerz/Luxury/internal/api"
	"github.com/Eschmerz/Luxury/internal/config"
	"github.com/Eschmerz/Luxury/internal/core"
	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/drive"
	"github.com/Eschmerz/Luxury/internal/middleware"
	"github.com/Eschmerz/Luxury/internal/payments"
	"github.com/Eschmerz/Luxury/pkg/mailer"
)

func main() {
	// Local development reads a .env file; in deployment the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	// --- 1. Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: failed to load application configuration: %v", err)
	}

	// --- 2. Logger ---
	var zapLogger *zap.Logger
	if strings.ToLower(cfg.GinMode) == "release" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Configuration loaded",
		zap.String("stripeMode", cfg.StripeMode()),
		zap.String("port", cfg.Port))

	// --- 3. Firebase Admin SDK (Firestore + Auth) ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	clients, err := db.InitFirebase(initCtx, cfg)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK initialized", zap.String("projectId", cfg.FirebaseProjectID))

	// --- 4. Stripe gateway and the canonical price ---
	// The price resolves once, at startup, strictly in the mode of the secret
	// key. A mode/price mismatch is a deployment error, not something to
	// paper over per request.
	gateway := payments.NewGateway(cfg)
	price, err := payments.ResolvePrice(cfg)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: failed to resolve Stripe price", zap.Error(err))
	}
	zapLogger.Info("Stripe price resolved",
		zap.String("priceId", price.ID),
		zap.String("mode", price.Mode))

	// --- 5. Optional integrations: Drive and SMTP ---
	// Both are best-effort: the payment flow works without them, so a
	// misconfiguration here logs a warning instead of refusing to start.
	// The Drive client outlives startup and refreshes tokens on its own, so it
	// must not inherit the init deadline.
	var driveService *drive.Service
	if ds, err := drive.NewService(context.Background(), cfg, zapLogger); err != nil {
		if errors.Is(err, drive.ErrNotConfigured) {
			zapLogger.Warn("Drive integration disabled: DRIVE_FOLDER_ID/DRIVE_FOLDER_URL not set")
		} else {
			zapLogger.Warn("Drive integration disabled: initialization failed", zap.Error(err))
		}
	} else {
		driveService = ds
		zapLogger.Info("Drive integration enabled", zap.String("folderId", ds.FolderID()))
	}

	smtpMailer := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSender)
	if smtpMailer == nil {
		zapLogger.Warn("Confirmation mailer disabled: SMTP_HOST/SMTP_USER not set")
	}

	// --- 6. Repositories and services ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	eventLogRepo := db.NewFirestoreEventLogRepository(clients.Firestore)
	billingService := core.NewBillingService(userRepo, gateway, price, zapLogger)
	userService := core.NewUserService(userRepo)

	// Interface values must stay nil when the integration is off; a typed nil
	// pointer would dodge the nil checks inside the service.
	var granter core.DriveGranter
	if driveService != nil {
		granter = driveService
	}
	var confirmer core.Mailer
	if smtpMailer != nil {
		confirmer = smtpMailer
	}
	accessService := core.NewAccessService(userRepo, eventLogRepo, granter, confirmer, cfg.StripeProductName, zapLogger)

	// --- 7. Gin engine and global middleware ---
	if strings.ToLower(cfg.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.Recovery(zapLogger))
	router.Use(middleware.CORS(cfg.Origins()))

	// --- 8. Routes ---
	var driveMeta func(ctx context.Context) (*drivev3.File, error)
	if driveService != nil {
		driveMeta = driveService.FolderMetadata
	}
	api.SetupRoutes(
		router,
		cfg,
		zapLogger,
		clients.Auth,
		userRepo,
		billingService,
		accessService,
		userService,
		gateway,
		driveMeta,
		drive.FolderIDFromConfig(cfg),
		drive.FolderURLFromConfig(cfg),
	)

	// --- 9. HTTP server with graceful shutdown ---
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully")
}
