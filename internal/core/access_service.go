package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/models"
)

// ErrDriveUnavailable is returned by GrantDriveAccess when no Drive adapter
// was configured at startup.
var ErrDriveUnavailable = errors.New("drive access is not configured")

// accessGrant is a verified payment completion reduced to what the workflow
// needs: a user-resolution key (uid, customer ID or billing email, strongest
// first) and the correlation fields to merge into the record.
type accessGrant struct {
	uid        string
	customerID string
	email      string
	fields     map[string]interface{}
}

// accessService implements the access-grant workflow: payment event in,
// access flag and Drive permission out.
type accessService struct {
	userRepo    db.UserRepository
	eventLog    db.EventLogRepository // nil disables event recording
	drive       DriveGranter          // nil when Drive is not configured
	mailer      Mailer                // nil when SMTP is not configured
	productName string
	logger      *zap.Logger
}

// NewAccessService creates a new AccessService. eventLog, drive and mailer may
// be nil; the corresponding side effects are then skipped.
func NewAccessService(userRepo db.UserRepository, eventLog db.EventLogRepository, drive DriveGranter, mailer Mailer, productName string, logger *zap.Logger) AccessService {
	return &accessService{
		userRepo:    userRepo,
		eventLog:    eventLog,
		drive:       drive,
		mailer:      mailer,
		productName: productName,
		logger:      logger,
	}
}

// HandlePaymentEvent classifies an already signature-verified event and, for
// the allowlisted completed-payment types, applies the access grant. Event
// types outside the allowlist are acknowledged without action so the gateway
// never retries irrelevant events.
func (s *accessService) HandlePaymentEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session from event %s: %w", event.ID, err)
		}

		grant := accessGrant{
			uid:    session.ClientReferenceID,
			email:  customerEmail(&session),
			fields: map[string]interface{}{models.FieldLastCheckoutSessionID: session.ID},
		}
		if grant.uid == "" {
			grant.uid = session.Metadata["firebaseUid"]
		}
		if session.Customer != nil {
			grant.customerID = session.Customer.ID
		}
		if session.PaymentLink != nil {
			grant.fields[models.FieldLastPaymentLinkID] = session.PaymentLink.ID
		}
		return s.applyGrant(ctx, event, grant)

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("failed to parse payment intent from event %s: %w", event.ID, err)
		}

		grant := accessGrant{
			email:  intent.ReceiptEmail,
			fields: map[string]interface{}{models.FieldLastPaymentIntentID: intent.ID},
		}
		if intent.Customer != nil {
			grant.customerID = intent.Customer.ID
		}
		return s.applyGrant(ctx, event, grant)

	default:
		s.logger.Info("ignoring unhandled stripe event type", zap.String("type", string(event.Type)))
		s.recordEventBestEffort(ctx, event, accessGrant{}, models.EventOutcomeIgnored)
		return nil
	}
}

// applyGrant resolves the target user record and merges the access flag into
// it, then triggers the best-effort side effects (Drive grant, confirmation
// email, event record). Re-applying the same grant is a no-op in effect, which
// is what makes duplicate webhook deliveries safe.
func (s *accessService) applyGrant(ctx context.Context, event stripe.Event, grant accessGrant) error {
	fields := map[string]interface{}{
		models.FieldAccess:        true,
		models.FieldLastPaymentAt: firestore.ServerTimestamp,
	}
	for k, v := range grant.fields {
		fields[k] = v
	}

	resolved := false
	switch {
	case grant.uid != "":
		if grant.customerID != "" {
			fields[models.FieldStripeCustomerID] = grant.customerID
		}
		if err := s.userRepo.UpsertMerge(ctx, grant.uid, fields); err != nil {
			return err
		}
		resolved = true

	case grant.customerID != "":
		user, err := s.userRepo.FindByField(ctx, models.FieldStripeCustomerID, grant.customerID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		if user != nil {
			if err := s.userRepo.UpsertMerge(ctx, user.ID, fields); err != nil {
				return err
			}
			resolved = true
			break
		}
		fallthrough

	default:
		// Last-resort correlation by billing email. Email is neither unique
		// nor verified here; the first matching record wins.
		if grant.email == "" {
			break
		}
		user, err := s.userRepo.FindByField(ctx, models.FieldEmail, grant.email)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		if user != nil {
			if grant.customerID != "" {
				fields[models.FieldStripeCustomerID] = grant.customerID
			}
			if err := s.userRepo.UpsertMerge(ctx, user.ID, fields); err != nil {
				return err
			}
			resolved = true
		}
	}

	if !resolved {
		s.logger.Warn("payment event did not resolve to any user record",
			zap.String("customerId", grant.customerID),
			zap.String("email", grant.email))
		s.recordEventBestEffort(ctx, event, grant, models.EventOutcomeUnresolved)
		return nil
	}

	// Side effects below are best-effort relative to the flag already set:
	// their failure never fails the webhook acknowledgment.
	s.recordEventBestEffort(ctx, event, grant, models.EventOutcomeGranted)
	if grant.email != "" {
		s.grantDriveBestEffort(ctx, grant.email)
		s.sendConfirmationBestEffort(grant.email)
	}
	return nil
}

// recordEventBestEffort writes the per-event forensic record. Failures are
// logged only; the record is diagnostics, not part of the grant.
func (s *accessService) recordEventBestEffort(ctx context.Context, event stripe.Event, grant accessGrant, outcome string) {
	if s.eventLog == nil {
		return
	}
	entry := &models.EventLog{
		ID:         event.ID,
		Type:       string(event.Type),
		UID:        grant.uid,
		CustomerID: grant.customerID,
		Email:      grant.email,
		Outcome:    outcome,
	}
	if err := s.eventLog.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record webhook event",
			zap.String("eventId", event.ID), zap.Error(err))
	}
}

// GrantDriveAccess grants folder read access to an email directly, bypassing
// payment-event resolution. Used by the admin endpoint.
func (s *accessService) GrantDriveAccess(ctx context.Context, email string) (bool, error) {
	if s.drive == nil {
		return false, ErrDriveUnavailable
	}
	return s.drive.GrantReaderAccess(ctx, email)
}

func (s *accessService) grantDriveBestEffort(ctx context.Context, email string) {
	if s.drive == nil {
		return
	}
	if _, err := s.drive.GrantReaderAccess(ctx, email); err != nil {
		s.logger.Warn("drive grant failed after access flag was set",
			zap.String("email", email), zap.Error(err))
	}
}

func (s *accessService) sendConfirmationBestEffort(email string) {
	if s.mailer == nil {
		return
	}
	subject := s.productName + " - purchase confirmed"
	body := fmt.Sprintf("<p>Thanks for your purchase of <b>%s</b>.</p>"+
		"<p>Your download folder has been shared with %s. Sign in and open it from your account page.</p>",
		s.productName, email)
	if err := s.mailer.Send(email, subject, body); err != nil {
		s.logger.Warn("confirmation email failed",
			zap.String("email", email), zap.Error(err))
	}
}

// customerEmail pulls the buyer email out of a checkout session, tolerating
// the fields Stripe omits depending on how the session was created.
func customerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	return ""
}
