// Package drive grants read access to the shared product folder. The grant is
// write-only from this system's point of view and duplicate-safe: Drive
// answering "already a member" counts as success.
package drive

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Eschmerz/Luxury/internal/config"
	"github.com/Eschmerz/Luxury/internal/db"
)

// ErrNotConfigured is returned when no folder ID or URL is configured.
var ErrNotConfigured = errors.New("drive folder is not configured")

var folderURLPattern = regexp.MustCompile(`/folders/([^/?#]+)`)

// Service wraps the Drive v3 API for the single shared folder.
type Service struct {
	svc      *drivev3.Service
	folderID string
	logger   *zap.Logger
}

// FolderIDFromConfig returns the configured folder ID, extracting it from
// DRIVE_FOLDER_URL when only the URL is set. Empty when neither is configured.
func FolderIDFromConfig(cfg *config.Config) string {
	if cfg.DriveFolderID != "" {
		return cfg.DriveFolderID
	}
	if m := folderURLPattern.FindStringSubmatch(cfg.DriveFolderURL); m != nil {
		return m[1]
	}
	return ""
}

// FolderURLFromConfig returns the shareable folder URL, preferring the
// explicit DRIVE_FOLDER_URL and falling back to one built from the folder ID.
func FolderURLFromConfig(cfg *config.Config) string {
	if cfg.DriveFolderURL != "" {
		return cfg.DriveFolderURL
	}
	if cfg.DriveFolderID != "" {
		return fmt.Sprintf("https://drive.google.com/drive/folders/%s?usp=sharing", cfg.DriveFolderID)
	}
	return ""
}

// NewService builds the Drive adapter using the same service-account
// credentials as the Firebase Admin SDK, with full Drive scope.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	folderID := FolderIDFromConfig(cfg)
	if folderID == "" {
		return nil, ErrNotConfigured
	}

	opts := []option.ClientOption{option.WithScopes(drivev3.DriveScope)}
	credsOption, err := db.CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}
	if credsOption != nil {
		opts = append(opts, credsOption)
	}

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}

	return &Service{svc: svc, folderID: folderID, logger: logger}, nil
}

// FolderID returns the configured folder ID.
func (s *Service) FolderID() string {
	return s.folderID
}

// GrantReaderAccess adds a reader permission for email on the shared folder,
// without the Drive notification email. A 409 from Drive means the permission
// already exists and is reported as success. Other failures are logged with a
// hint and reported as not-granted; the caller decides whether that matters.
func (s *Service) GrantReaderAccess(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, errors.New("email is required for a drive grant")
	}

	perm := &drivev3.Permission{
		Role:         "reader",
		Type:         "user",
		EmailAddress: email,
	}
	_, err := s.svc.Permissions.Create(s.folderID, perm).
		SendNotificationEmail(false).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case 409:
				s.logger.Info("drive permission already existed", zap.String("email", email))
				return true, nil
			case 403:
				s.logger.Warn("drive returned 403; check that the service account has access to the folder",
					zap.String("folderId", s.folderID))
			case 404:
				s.logger.Warn("drive returned 404; DRIVE_FOLDER_ID looks invalid",
					zap.String("folderId", s.folderID))
			}
		}
		return false, fmt.Errorf("drive: add reader permission for %s: %w", email, err)
	}

	s.logger.Info("drive reader permission added", zap.String("email", email))
	return true, nil
}

// FolderMetadata fetches the folder's name, permissions and owners. Used by
// the admin diagnostics endpoint to verify service-account access.
func (s *Service) FolderMetadata(ctx context.Context) (*drivev3.File, error) {
	file, err := s.svc.Files.Get(s.folderID).
		Fields("id", "name", "permissions(kind,role,emailAddress,domain)", "owners(emailAddress)", "shared").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive: get folder metadata: %w", err)
	}
	return file, nil
}
