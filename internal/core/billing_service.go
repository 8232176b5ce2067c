package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/models"
	"github.com/Eschmerz/Luxury/internal/payments"
)

// ErrMissingFields is returned when a request lacks required fields.
var ErrMissingFields = errors.New("unit_amount and product_name required")

// billingService implements BillingService on top of the user record store
// and the payment gateway. The canonical price is resolved once at startup
// and injected here, so every artifact this service creates belongs to the
// current operating mode.
type billingService struct {
	userRepo db.UserRepository
	gateway  PaymentGateway
	price    payments.Price
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(userRepo db.UserRepository, gateway PaymentGateway, price payments.Price, logger *zap.Logger) BillingService {
	return &billingService{
		userRepo: userRepo,
		gateway:  gateway,
		price:    price,
		logger:   logger,
	}
}

// EnsureCustomer returns the linked Stripe customer ID for the user, creating
// one and persisting the linkage when absent.
func (s *billingService) EnsureCustomer(ctx context.Context, ident Identity) (string, bool, error) {
	user, err := s.userRepo.GetByID(ctx, ident.UID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return "", false, fmt.Errorf("failed to load user '%s': %w", ident.UID, err)
	}
	if user != nil && user.StripeCustomerID != "" {
		return user.StripeCustomerID, true, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, ident.Email, ident.Name, ident.UID)
	if err != nil {
		return "", false, err
	}

	fields := map[string]interface{}{
		models.FieldStripeCustomerID: customerID,
		models.FieldStripeCreatedAt:  firestore.ServerTimestamp,
	}
	if ident.Email != "" {
		fields[models.FieldEmail] = ident.Email
	}
	if ident.Name != "" {
		fields[models.FieldName] = ident.Name
	}
	if err := s.userRepo.UpsertMerge(ctx, ident.UID, fields); err != nil {
		return "", false, fmt.Errorf("failed to persist customer linkage for '%s': %w", ident.UID, err)
	}

	s.logger.Info("stripe customer created",
		zap.String("uid", ident.UID), zap.String("customerId", customerID))
	return customerID, false, nil
}

// CreateCheckoutSession creates a one-shot Checkout session for the user,
// ensuring the customer linkage first.
func (s *billingService) CreateCheckoutSession(ctx context.Context, ident Identity, req CheckoutRequest) (*payments.Session, error) {
	if req.UnitAmount == 0 || req.ProductName == "" {
		return nil, ErrMissingFields
	}

	customerID, _, err := s.EnsureCustomer(ctx, ident)
	if err != nil {
		return nil, err
	}

	origin := strings.TrimRight(req.Origin, "/")
	successPath := req.SuccessPath
	if successPath == "" {
		successPath = "/"
	}
	cancelPath := req.CancelPath
	if cancelPath == "" {
		cancelPath = "/"
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		CustomerID:        customerID,
		PriceID:           s.price.ID,
		SuccessURL:        origin + successPath + "?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         origin + cancelPath + "?canceled=true",
		ClientReferenceID: ident.UID,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateUserPaylink returns the user's payment link, reusing the cached one
// only when both its price and its operating mode match the current
// configuration. A stale link from another mode is never handed out.
func (s *billingService) CreateUserPaylink(ctx context.Context, ident Identity, req PaylinkRequest) (*PaylinkResult, error) {
	user, err := s.userRepo.GetByID(ctx, ident.UID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user '%s': %w", ident.UID, err)
	}

	if user != nil &&
		user.StripePaylinkURL != "" && user.StripePaylinkID != "" &&
		user.StripePriceID == s.price.ID && user.StripeMode == s.price.Mode {
		return &PaylinkResult{
			URL:           withPrefilledEmail(user.StripePaylinkURL, ident.Email),
			PaymentLinkID: user.StripePaylinkID,
			PriceID:       s.price.ID,
			ProductID:     user.StripeProductID,
		}, nil
	}

	origin := strings.TrimRight(req.Origin, "/")
	successPath := req.SuccessPath
	if successPath == "" {
		successPath = "/"
	}

	link, err := s.gateway.CreatePaymentLink(ctx, payments.PaylinkParams{
		PriceID:     s.price.ID,
		FirebaseUID: ident.UID,
		RedirectURL: origin + successPath + "?paid=true",
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		models.FieldStripeMode:       s.price.Mode,
		models.FieldStripePaylinkID:  link.ID,
		models.FieldStripePaylinkURL: link.URL,
		models.FieldStripePriceID:    s.price.ID,
		models.FieldStripeProductID:  s.price.ProductID,
		models.FieldUpdatedAt:        firestore.ServerTimestamp,
	}
	if ident.Email != "" {
		fields[models.FieldEmail] = ident.Email
	}
	if ident.Name != "" {
		fields[models.FieldName] = ident.Name
	}
	if err := s.userRepo.UpsertMerge(ctx, ident.UID, fields); err != nil {
		return nil, fmt.Errorf("failed to persist payment link for '%s': %w", ident.UID, err)
	}

	s.logger.Info("payment link created",
		zap.String("uid", ident.UID),
		zap.String("paymentLinkId", link.ID),
		zap.String("mode", s.price.Mode))

	return &PaylinkResult{
		URL:           withPrefilledEmail(link.URL, ident.Email),
		PaymentLinkID: link.ID,
		PriceID:       s.price.ID,
		ProductID:     s.price.ProductID,
	}, nil
}

// CreatePortalSession creates a Billing Portal session, ensuring the customer
// linkage first.
func (s *billingService) CreatePortalSession(ctx context.Context, ident Identity, origin string) (*payments.Session, error) {
	customerID, _, err := s.EnsureCustomer(ctx, ident)
	if err != nil {
		return nil, err
	}
	returnURL := strings.TrimRight(origin, "/") + "/?billing=done"
	return s.gateway.CreatePortalSession(ctx, customerID, returnURL)
}

// withPrefilledEmail appends prefilled_email to a payment link URL so the
// hosted page starts with the buyer's address filled in.
func withPrefilledEmail(rawURL, email string) string {
	if email == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + "prefilled_email=" + url.QueryEscape(email)
	}
	q := u.Query()
	q.Set("prefilled_email", email)
	u.RawQuery = q.Encode()
	return u.String()
}
