package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CheckoutSessionRequest is the body for POST /create-checkout-session.
type CheckoutSessionRequest struct {
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
	ProductName string `json:"product_name"`
	SuccessPath string `json:"success_path"`
	CancelPath  string `json:"cancel_path"`
}

// PaylinkRequest is the body for POST /user-paylink. All fields are optional;
// the canonical price comes from configuration.
type PaylinkRequest struct {
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
	ProductName string `json:"product_name"`
	SuccessPath string `json:"success_path"`
}

// CustomerResponse answers POST /create-stripe-customer.
type CustomerResponse struct {
	CustomerID string `json:"customerId"`
	Exists     bool   `json:"exists"`
}

// SessionResponse answers the checkout and billing-portal endpoints.
type SessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// PaylinkResponse answers POST /user-paylink.
type PaylinkResponse struct {
	URL           string `json:"url"`
	PaymentLinkID string `json:"paymentLinkId"`
	PriceID       string `json:"priceId"`
	ProductID     string `json:"productId,omitempty"`
}

// MeResponse answers GET /me.
type MeResponse struct {
	UID              string `json:"uid"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Access           bool   `json:"access"`
	StripeCustomerID string `json:"stripeCustomerId,omitempty"`
	StripePaylinkURL string `json:"stripePaylinkUrl,omitempty"`
	StripePaylinkID  string `json:"stripePaylinkId,omitempty"`
}

// PublicConfigResponse answers GET /config. Pointers so unconfigured values
// serialize as null, which is what the client shell checks for.
type PublicConfigResponse struct {
	DriveFolderID  *string `json:"driveFolderId"`
	DriveFolderURL *string `json:"driveFolderUrl"`
}

// ResetPaylinkRequest is the body for POST /admin/reset-paylink.
type ResetPaylinkRequest struct {
	UID string `json:"uid"`
}

// GrantDriveRequest is the body for POST /admin/grant-drive.
type GrantDriveRequest struct {
	Email string `json:"email"`
}
