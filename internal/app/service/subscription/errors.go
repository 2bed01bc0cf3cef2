package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request missing a required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing product or subscription reference.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks a product that is not subscription-billed.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition marks a status change outside the transition
	// table, e.g. reactivating a canceled subscription.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ConflictError is returned when a second subscription is created for a
// (user, product) pair that already has a billable one. It carries the
// existing id so callers can reconcile instead of blindly retrying.
type ConflictError struct {
	ExistingSubscriptionID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("subscription already exists: %s", e.ExistingSubscriptionID)
}
