package core

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/Eschmerz/Luxury/internal/models"
	"github.com/Eschmerz/Luxury/internal/payments"
)

// Identity is the verified identity of the current request, extracted from
// the Firebase ID token by the auth middleware.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// PaymentGateway is the payment-provider surface the services depend on.
// Implemented by payments.Gateway; faked in tests.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, name, firebaseUID string) (string, error)
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*payments.Session, error)
	CreatePaymentLink(ctx context.Context, p payments.PaylinkParams) (*payments.Link, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*payments.Session, error)
}

// DriveGranter grants read access on the shared folder. Implemented by
// drive.Service; may be absent when Drive is not configured.
type DriveGranter interface {
	GrantReaderAccess(ctx context.Context, email string) (bool, error)
}

// Mailer sends the purchase confirmation email. Optional.
type Mailer interface {
	Send(recipient, subject, body string) error
}

// CheckoutRequest carries the client-supplied fields for a Checkout session.
type CheckoutRequest struct {
	UnitAmount  int64
	Currency    string
	ProductName string
	Origin      string
	SuccessPath string
	CancelPath  string
}

// PaylinkRequest carries the client-supplied fields for a payment link.
type PaylinkRequest struct {
	Origin      string
	SuccessPath string
}

// PaylinkResult is the reusable payment link returned to the client. The URL
// already carries the prefilled buyer email when one is known.
type PaylinkResult struct {
	URL           string
	PaymentLinkID string
	PriceID       string
	ProductID     string
}

// BillingService owns customer linkage and payment artifact creation.
type BillingService interface {
	// EnsureCustomer returns the user's linked Stripe customer ID, creating
	// and persisting one when absent. Idempotent per user.
	EnsureCustomer(ctx context.Context, ident Identity) (customerID string, existed bool, err error)
	CreateCheckoutSession(ctx context.Context, ident Identity, req CheckoutRequest) (*payments.Session, error)
	// CreateUserPaylink returns the user's cached payment link when its price
	// and operating mode still match the current configuration, otherwise
	// creates and persists a fresh one.
	CreateUserPaylink(ctx context.Context, ident Identity, req PaylinkRequest) (*PaylinkResult, error)
	CreatePortalSession(ctx context.Context, ident Identity, origin string) (*payments.Session, error)
}

// AccessService applies verified payment events to user records and triggers
// the Drive grant.
type AccessService interface {
	// HandlePaymentEvent processes an already signature-verified event.
	// Unrecognized event types and unresolvable users are silent no-ops; an
	// error is returned only when the record store itself fails.
	HandlePaymentEvent(ctx context.Context, event stripe.Event) error
	// GrantDriveAccess grants folder read access to an email directly (admin
	// path, no payment event involved).
	GrantDriveAccess(ctx context.Context, email string) (bool, error)
}

// UserService reads user profiles for the authenticated endpoints.
type UserService interface {
	// Profile returns the stored record, falling back to the token claims
	// when no document exists yet.
	Profile(ctx context.Context, ident Identity) (*models.User, error)
	HasAccess(ctx context.Context, userID string) (bool, error)
}
