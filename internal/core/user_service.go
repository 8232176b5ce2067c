package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/models"
)

// userService implements UserService on top of the user record store.
type userService struct {
	userRepo db.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Profile returns the stored user record for the authenticated identity.
// Records are created lazily by merge writes elsewhere, so a missing document
// is not an error: the profile is synthesized from the token claims with the
// access flag off. Stored email/name win over the claims when both exist.
func (s *userService) Profile(ctx context.Context, ident Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, ident.UID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &models.User{ID: ident.UID, Email: ident.Email, Name: ident.Name}, nil
		}
		return nil, fmt.Errorf("failed to get user by ID '%s': %w", ident.UID, err)
	}

	user.ID = ident.UID
	if user.Email == "" {
		user.Email = ident.Email
	}
	if user.Name == "" {
		user.Name = ident.Name
	}
	return user, nil
}

// HasAccess reports whether the user's access flag is set. A missing record
// means no access, not an error.
func (s *userService) HasAccess(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user by ID '%s': %w", userID, err)
	}
	return user.Access, nil
}
