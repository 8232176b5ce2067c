// Package payments wraps the Stripe SDK behind a small gateway so the
// orchestration layer can be exercised with test doubles.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Eschmerz/Luxury/internal/config"
)

// ErrSignatureInvalid is returned when a webhook payload fails signature
// verification. No state may change after this error.
var ErrSignatureInvalid = errors.New("webhook signature verification failed")

// Session is a created Checkout or Billing Portal session.
type Session struct {
	ID  string
	URL string
}

// Link is a created reusable payment link.
type Link struct {
	ID  string
	URL string
}

// CheckoutParams describes a one-shot Checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	// ClientReferenceID carries the Firebase UID so the completed-session
	// webhook can be resolved back to a user without guessing.
	ClientReferenceID string
}

// PaylinkParams describes a reusable payment link.
type PaylinkParams struct {
	PriceID     string
	FirebaseUID string
	// RedirectURL is where Stripe sends the buyer after completion.
	RedirectURL string
}

// Gateway is the Stripe-backed payment gateway adapter.
type Gateway struct {
	sc            *client.API
	webhookSecret string
}

// NewGateway builds a Gateway from the loaded configuration. The Stripe client
// is created once and reused; it is safe for concurrent use.
func NewGateway(cfg *config.Config) *Gateway {
	sc := &client.API{}
	sc.Init(cfg.StripeSecretKey, nil)
	return &Gateway{sc: sc, webhookSecret: cfg.StripeWebhookSecret}
}

// CreateCustomer creates a Stripe customer tagged with the Firebase UID.
// Idempotence per user is the caller's job: the linkage is persisted on the
// user record and checked before calling here.
func (g *Gateway) CreateCustomer(ctx context.Context, email, name, firebaseUID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.AddMetadata("firebaseUid", firebaseUID)

	customer, err := g.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return customer.ID, nil
}

// CreateCheckoutSession creates a one-shot payment Checkout session bound to
// an existing customer.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer: stripe.String(p.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:          stripe.String(p.SuccessURL),
		CancelURL:           stripe.String(p.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		ClientReferenceID:   stripe.String(p.ClientReferenceID),
	}
	params.Context = ctx
	params.AddMetadata("firebaseUid", p.ClientReferenceID)

	session, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}

// CreatePaymentLink creates a reusable payment link for the given price. The
// caller persists it keyed by (user, price, mode) and reuses it on later calls.
func (g *Gateway) CreatePaymentLink(ctx context.Context, p PaylinkParams) (*Link, error) {
	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		CustomerCreation: stripe.String("if_required"),
	}
	params.Context = ctx
	params.AddMetadata("firebaseUid", p.FirebaseUID)
	if p.RedirectURL != "" {
		params.AfterCompletion = &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String("redirect"),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(p.RedirectURL),
			},
		}
	}

	link, err := g.sc.PaymentLinks.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment link: %w", err)
	}
	return &Link{ID: link.ID, URL: link.URL}, nil
}

// CreatePortalSession creates a Billing Portal session for an existing customer.
func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := g.sc.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create billing portal session: %w", err)
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}

// VerifyWebhook checks the Stripe-Signature header against the exact raw bytes
// received on the wire and parses the event. Any prior parsing or re-encoding
// of the body invalidates the signature, so the transport layer must hand the
// payload over unmodified.
func (g *Gateway) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return event, nil
}
