package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const defaultSendTimeout = 10 * time.Second

// sendClient is the part of the SendGrid client used by the sender.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	client    sendClient
	fromEmail string
	fromName  string
	timeout   time.Duration
}

func NewSendGridSender(apiKey, fromEmail, fromName string) (*SendGridSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return newSendGridSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridSender(client sendClient, fromEmail, fromName string) (*SendGridSender, error) {
	if client == nil {
		return nil, fmt.Errorf("sendgrid client is required")
	}
	if strings.TrimSpace(fromEmail) == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &SendGridSender{
		client:    client,
		fromEmail: strings.TrimSpace(fromEmail),
		fromName:  strings.TrimSpace(fromName),
		timeout:   defaultSendTimeout,
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, email Email) (*SendResult, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("sender is not initialized")
	}
	if strings.TrimSpace(email.ToEmail) == "" {
		return nil, &ProviderError{Message: "recipient email is required", Transient: false}
	}

	message := s.buildMessage(email, false)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, &ProviderError{
			Message:   "provider request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &ProviderError{
			Message:   "provider returned empty response",
			Transient: true,
		}
	}

	if response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices {
		return &SendResult{
			StatusCode: response.StatusCode,
			MessageID:  providerMessageID(response),
		}, nil
	}

	return nil, &ProviderError{
		StatusCode: response.StatusCode,
		Message:    providerErrorMessage(response.StatusCode, response.Body),
		Transient:  isTransientHTTPStatus(response.StatusCode),
	}
}

// ValidateConnection sends a sandbox-mode probe to the configured from
// address. Sandbox mode makes the call non-billable and suppresses actual
// delivery.
func (s *SendGridSender) ValidateConnection(ctx context.Context) bool {
	if s == nil || s.client == nil {
		return false
	}

	probe := s.buildMessage(Email{
		ToEmail:  s.fromEmail,
		ToName:   "Probe",
		Subject:  "Connection probe",
		HTMLBody: "<p>Connection probe</p>",
	}, true)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.client.SendWithContext(ctx, probe)
	if err != nil || response == nil {
		return false
	}
	return response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices
}

func (s *SendGridSender) buildMessage(email Email, sandbox bool) *mail.SGMailV3 {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(email.ToName, email.ToEmail)

	textBody := email.Subject
	if email.TextBody != nil && strings.TrimSpace(*email.TextBody) != "" {
		textBody = *email.TextBody
	}

	message := mail.NewSingleEmail(from, email.Subject, to, textBody, email.HTMLBody)
	if sandbox {
		settings := mail.NewMailSettings()
		settings.SetSandboxMode(mail.NewSetting(true))
		message.SetMailSettings(settings)
	}

	return message
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func providerErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("provider returned status %d", statusCode)
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		return fmt.Sprintf("%s: %s", base, trimmed)
	}
	return base
}

func providerMessageID(response *rest.Response) string {
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Message-Id", "X-Message-ID"} {
		if values, ok := response.Headers[key]; ok && len(values) > 0 {
			if value := strings.TrimSpace(values[0]); value != "" {
				return value
			}
		}
	}

	return ""
}
