package domain

import "time"

// NotificationAttempt records a single email transport invocation for a
// notification. Rows are append-only audit data.
type NotificationAttempt struct {
	ID             string
	NotificationID string
	AttemptNumber  int
	StatusCode     *int
	Error          *string
	CreatedAt      time.Time
}
