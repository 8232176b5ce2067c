package db

import (
	"context"

	"github.com/Eschmerz/Luxury/internal/models"
)

// UserRepository defines the interface for user record storage operations.
//
// UpsertMerge is the only write primitive: independent steps (customer
// creation, paylink caching, access grants) each own a subset of the document
// fields, so a write must never clobber fields it did not set. The underlying
// store is expected to apply a merge atomically per document.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)

	// UpsertMerge merges the given fields into the user document, creating it
	// if absent. Fields not present in the map are left untouched.
	UpsertMerge(ctx context.Context, userID string, fields map[string]interface{}) error

	// FindByField returns at most one user whose document field equals value.
	// If several match, the first is used; returns ErrNotFound when none do.
	FindByField(ctx context.Context, field string, value interface{}) (*models.User, error)

	// DeleteFields removes the named fields from the user document, leaving
	// the rest of the record intact.
	DeleteFields(ctx context.Context, userID string, fields ...string) error
}

// EventLogRepository stores one record per processed webhook event, keyed by
// the gateway's event ID.
type EventLogRepository interface {
	Record(ctx context.Context, entry *models.EventLog) error
}
