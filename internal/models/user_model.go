package models

import "time"

// User is the per-user document stored in the "users" collection, keyed by the
// Firebase Auth UID. It is written piecemeal by independent steps (customer
// creation, paylink caching, webhook grants), so every write is a merge; the
// struct describes the full shape only for reads.
type User struct {
	ID    string `json:"uid" firestore:"-"` // Firebase Auth UID, the document ID
	Email string `json:"email" firestore:"email"`
	Name  string `json:"name,omitempty" firestore:"name"`

	// Access gates the protected Drive folder. Set to true only by a verified
	// payment event; never unset automatically.
	Access        bool      `json:"access" firestore:"access"`
	LastPaymentAt time.Time `json:"lastPaymentAt,omitempty" firestore:"lastPaymentAt"`

	StripeCustomerID string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId"`
	StripeCreatedAt  time.Time `json:"-" firestore:"stripeCreatedAt"`

	// Cached payment link, valid only while both the price and the operating
	// mode still match the current configuration.
	StripeMode       string `json:"-" firestore:"stripeMode"`
	StripePaylinkID  string `json:"stripePaylinkId,omitempty" firestore:"stripePaylinkId"`
	StripePaylinkURL string `json:"stripePaylinkUrl,omitempty" firestore:"stripePaylinkUrl"`
	StripePriceID    string `json:"-" firestore:"stripePriceId"`
	StripeProductID  string `json:"-" firestore:"stripeProductId"`

	// Correlation IDs from the most recent payment event.
	LastCheckoutSessionID string `json:"-" firestore:"lastCheckoutSessionId"`
	LastPaymentLinkID     string `json:"-" firestore:"lastPaymentLinkId"`
	LastPaymentIntentID   string `json:"-" firestore:"lastPaymentIntentId"`

	UpdatedAt time.Time `json:"-" firestore:"updatedAt"`
}

// Firestore field names used by merge writes and queries. Kept as constants so
// the repository, services and admin reset agree on the document schema.
const (
	FieldEmail                 = "email"
	FieldName                  = "name"
	FieldAccess                = "access"
	FieldLastPaymentAt         = "lastPaymentAt"
	FieldStripeCustomerID      = "stripeCustomerId"
	FieldStripeCreatedAt       = "stripeCreatedAt"
	FieldStripeMode            = "stripeMode"
	FieldStripePaylinkID       = "stripePaylinkId"
	FieldStripePaylinkURL      = "stripePaylinkUrl"
	FieldStripePriceID         = "stripePriceId"
	FieldStripeProductID       = "stripeProductId"
	FieldLastCheckoutSessionID = "lastCheckoutSessionId"
	FieldLastPaymentLinkID     = "lastPaymentLinkId"
	FieldLastPaymentIntentID   = "lastPaymentIntentId"
	FieldUpdatedAt             = "updatedAt"
)
