package models

import "time"

// Outcomes recorded per processed webhook event.
const (
	EventOutcomeGranted    = "granted"
	EventOutcomeUnresolved = "unresolved"
	EventOutcomeIgnored    = "ignored"
)

// EventLog records one received Stripe webhook event for operator forensics:
// which user (if any) an event resolved to and what was done with it. The
// document ID is the Stripe event ID, so a duplicate delivery overwrites its
// own record instead of piling up.
type EventLog struct {
	ID         string    `json:"id" firestore:"-"`
	Type       string    `json:"type" firestore:"type"`
	UID        string    `json:"uid,omitempty" firestore:"uid,omitempty"`
	CustomerID string    `json:"customerId,omitempty" firestore:"customerId,omitempty"`
	Email      string    `json:"email,omitempty" firestore:"email,omitempty"`
	Outcome    string    `json:"outcome" firestore:"outcome"`
	ReceivedAt time.Time `json:"receivedAt" firestore:"receivedAt,serverTimestamp"`
}
