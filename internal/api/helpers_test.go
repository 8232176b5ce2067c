package api

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"github.com/Eschmerz/Luxury/internal/core"
	"github.com/Eschmerz/Luxury/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects a verified identity into the Gin context, standing in for the
// auth middleware.
func asUser(uid, email, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Set("userEmail", email)
		c.Set("userName", name)
		c.Next()
	}
}

type fakeAccessService struct {
	events   []stripe.Event
	eventErr error

	grantedEmails []string
	grantErr      error
}

func (f *fakeAccessService) HandlePaymentEvent(_ context.Context, event stripe.Event) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAccessService) GrantDriveAccess(_ context.Context, email string) (bool, error) {
	if f.grantErr != nil {
		return false, f.grantErr
	}
	f.grantedEmails = append(f.grantedEmails, email)
	return true, nil
}

type fakeUserService struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUserService) Profile(_ context.Context, ident core.Identity) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[ident.UID]; ok {
		return user, nil
	}
	return &models.User{ID: ident.UID, Email: ident.Email, Name: ident.Name}, nil
}

func (f *fakeUserService) HasAccess(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	user, ok := f.users[userID]
	return ok && user.Access, nil
}

// fakeVerifier accepts any token of the form "token-<uid>".
type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	const prefix = "token-"
	if len(idToken) <= len(prefix) || idToken[:len(prefix)] != prefix {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: idToken[len(prefix):]}, nil
}

// fakeAdminRepo records DeleteFields calls for the reset endpoint.
type fakeAdminRepo struct {
	deleted map[string][]string
	err     error
}

func (r *fakeAdminRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	return nil, fmt.Errorf("not implemented for %s", userID)
}

func (r *fakeAdminRepo) UpsertMerge(_ context.Context, _ string, _ map[string]interface{}) error {
	return errors.New("not implemented")
}

func (r *fakeAdminRepo) FindByField(_ context.Context, _ string, _ interface{}) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeAdminRepo) DeleteFields(_ context.Context, userID string, fields ...string) error {
	if r.err != nil {
		return r.err
	}
	if r.deleted == nil {
		r.deleted = map[string][]string{}
	}
	r.deleted[userID] = fields
	return nil
}
