package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Eschmerz/Luxury/internal/models"
)

const usersCollection = "users"

// ErrNotFound is returned when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// GetByID retrieves a user document by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// UpsertMerge merges the given fields into the user document, creating it if
// it does not exist. Firestore applies the merge atomically per document,
// which is what makes concurrent webhook deliveries for the same user safe
// without application-level locking.
func (r *firestoreUserRepository) UpsertMerge(ctx context.Context, userID string, fields map[string]interface{}) error {
	if userID == "" {
		return errors.New("userID cannot be empty for UpsertMerge operation")
	}
	if len(fields) == 0 {
		return nil
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to merge fields into user '%s': %w", userID, err)
	}
	return nil
}

// FindByField returns the first user document whose field equals value.
// Uniqueness is not enforced by the store; when several documents match
// (possible for email), only the first is used.
func (r *firestoreUserRepository) FindByField(ctx context.Context, field string, value interface{}) (*models.User, error) {
	if field == "" {
		return nil, errors.New("field cannot be empty for FindByField operation")
	}
	iter := r.client.Collection(usersCollection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no user with %s == %v: %w", field, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query users by %s: %w", field, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// DeleteFields removes the named fields via a merge write of delete sentinels,
// so the rest of the document survives and a missing document is not an error.
func (r *firestoreUserRepository) DeleteFields(ctx context.Context, userID string, fields ...string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for DeleteFields operation")
	}
	if len(fields) == 0 {
		return nil
	}
	deletes := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		deletes[f] = firestore.Delete
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, deletes, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to delete fields from user '%s': %w", userID, err)
	}
	return nil
}
