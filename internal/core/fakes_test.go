package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eschmerz/Luxury/internal/db"
	"github.com/Eschmerz/Luxury/internal/models"
	"github.com/Eschmerz/Luxury/internal/payments"
)

// fakeUserRepo is an in-memory UserRepository that keeps documents as field
// maps, so merge semantics (partial writes never clobbering unrelated fields)
// behave like the real store.
type fakeUserRepo struct {
	docs     map[string]map[string]interface{}
	getErr   error
	writeErr error
	merges   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{docs: map[string]map[string]interface{}{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	doc, ok := r.docs[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	return userFromDoc(userID, doc), nil
}

func (r *fakeUserRepo) UpsertMerge(_ context.Context, userID string, fields map[string]interface{}) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	doc, ok := r.docs[userID]
	if !ok {
		doc = map[string]interface{}{}
		r.docs[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	r.merges++
	return nil
}

func (r *fakeUserRepo) FindByField(_ context.Context, field string, value interface{}) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for id, doc := range r.docs {
		if doc[field] == value {
			return userFromDoc(id, doc), nil
		}
	}
	return nil, fmt.Errorf("no user with %s == %v: %w", field, value, db.ErrNotFound)
}

func (r *fakeUserRepo) DeleteFields(_ context.Context, userID string, fields ...string) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	doc, ok := r.docs[userID]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(doc, f)
	}
	return nil
}

func userFromDoc(id string, doc map[string]interface{}) *models.User {
	str := func(k string) string {
		s, _ := doc[k].(string)
		return s
	}
	u := &models.User{
		ID:               id,
		Email:            str(models.FieldEmail),
		Name:             str(models.FieldName),
		StripeCustomerID: str(models.FieldStripeCustomerID),
		StripeMode:       str(models.FieldStripeMode),
		StripePaylinkID:  str(models.FieldStripePaylinkID),
		StripePaylinkURL: str(models.FieldStripePaylinkURL),
		StripePriceID:    str(models.FieldStripePriceID),
		StripeProductID:  str(models.FieldStripeProductID),
	}
	if b, ok := doc[models.FieldAccess].(bool); ok {
		u.Access = b
	}
	return u
}

type fakeEventLog struct {
	entries []*models.EventLog
	err     error
}

func (l *fakeEventLog) Record(_ context.Context, entry *models.EventLog) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeEventLog) last() *models.EventLog {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

type fakeGranter struct {
	emails []string
	err    error
}

func (g *fakeGranter) GrantReaderAccess(_ context.Context, email string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	g.emails = append(g.emails, email)
	return true, nil
}

type fakeMailer struct {
	recipients []string
	err        error
}

func (m *fakeMailer) Send(recipient, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.recipients = append(m.recipients, recipient)
	return nil
}

// fakeGateway mints deterministic IDs and counts calls.
type fakeGateway struct {
	customers int
	sessions  int
	links     int
	portals   int

	lastCheckout payments.CheckoutParams
	lastPaylink  payments.PaylinkParams
	lastReturn   string

	err error
}

var errGateway = errors.New("gateway unavailable")

func (g *fakeGateway) CreateCustomer(_ context.Context, _, _, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, p payments.CheckoutParams) (*payments.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.sessions++
	g.lastCheckout = p
	return &payments.Session{
		ID:  fmt.Sprintf("cs_%d", g.sessions),
		URL: fmt.Sprintf("https://checkout.stripe.com/c/pay/cs_%d", g.sessions),
	}, nil
}

func (g *fakeGateway) CreatePaymentLink(_ context.Context, p payments.PaylinkParams) (*payments.Link, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.links++
	g.lastPaylink = p
	return &payments.Link{
		ID:  fmt.Sprintf("plink_%d", g.links),
		URL: fmt.Sprintf("https://buy.stripe.com/test_%d", g.links),
	}, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (*payments.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.portals++
	g.lastReturn = returnURL
	return &payments.Session{
		ID:  fmt.Sprintf("bps_%d", g.portals),
		URL: "https://billing.stripe.com/session/" + customerID,
	}, nil
}
