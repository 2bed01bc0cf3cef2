package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered id. Subscriptions, log entries and
// enrollments all use v7 so primary-key order follows creation order.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
