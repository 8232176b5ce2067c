package db

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/Eschmerz/Luxury/internal/config"
)

// Clients bundles the long-lived Firebase handles. They are created once at
// startup and shared by every request; none of them are safe to re-create per
// request (connection pooling lives inside the clients).
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

// CredentialsOption resolves the service-account credentials from the loaded
// configuration: an explicit file path wins, then inline base64 JSON, then
// Application Default Credentials (nil option). This is the single place where
// credential strategies are chosen.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials != "" {
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	}
	if cfg.FirebaseServiceAccountJSONBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}
	return nil, nil
}

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore
// and Auth clients.
func InitFirebase(ctx context.Context, cfg *config.Config) (*Clients, error) {
	if cfg == nil {
		return nil, fmt.Errorf("InitFirebase: cfg cannot be nil")
	}

	credsOption, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	fbConfig := &firebase.Config{ProjectID: cfg.FirebaseProjectID}

	var app *firebase.App
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, fbConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, fbConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return &Clients{App: app, Firestore: fsClient, Auth: authClient}, nil
}

// Close releases the Firestore connection. Safe on a nil receiver.
func (c *Clients) Close() {
	if c != nil && c.Firestore != nil {
		c.Firestore.Close()
	}
}
