package provider

import "context"

// Email is one rendered message ready for transport.
type Email struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody *string
}

// SendResult stores provider call metadata for audit and persistence.
type SendResult struct {
	StatusCode int
	MessageID  string
}

// EmailSender is the outbound email delivery port. Send returns a
// *ProviderError for provider-side rejections; it never panics on them.
type EmailSender interface {
	Send(ctx context.Context, email Email) (*SendResult, error)
	// ValidateConnection performs a non-billable sandboxed probe against
	// the provider, for health checks.
	ValidateConnection(ctx context.Context) bool
}
