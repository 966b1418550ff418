package domain

import "time"

// Template is a named content blueprint keyed by notification type.
// Templates are seeded once at startup if absent and are read-only on the
// delivery path.
type Template struct {
	ID               int
	Name             string
	NotificationType NotificationType
	SubjectTemplate  string
	HTMLBodyTemplate string
	TextBodyTemplate *string
	Description      *string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
