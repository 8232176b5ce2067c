package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Eschmerz/Luxury/internal/models"
)

const eventLogCollection = "stripeEvents"

// firestoreEventLogRepository implements EventLogRepository using Firestore.
type firestoreEventLogRepository struct {
	client *firestore.Client
}

// NewFirestoreEventLogRepository creates a new instance of firestoreEventLogRepository.
func NewFirestoreEventLogRepository(client *firestore.Client) EventLogRepository {
	if client == nil {
		panic("Firestore client is not initialized for EventLogRepository")
	}
	return &firestoreEventLogRepository{client: client}
}

// Record writes the event log document keyed by the Stripe event ID. A full
// Set (not a merge) is intended: a redelivered event replaces its own record.
func (r *firestoreEventLogRepository) Record(ctx context.Context, entry *models.EventLog) error {
	if entry == nil || entry.ID == "" {
		return errors.New("event log entry must carry the event ID")
	}
	_, err := r.client.Collection(eventLogCollection).Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to record event '%s': %w", entry.ID, err)
	}
	return nil
}
