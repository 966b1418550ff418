package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/eventstack/notification-engine/internal/provider"
)

func TestLivezHandler(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/livez", LivezHandler())

	resp := performRequest(t, app, "/livez")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestEmailHealthHandlerUp(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/healthz/email", EmailHealthHandler(&stubSender{healthy: true}))

	resp := performRequest(t, app, "/healthz/email")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestEmailHealthHandlerDown(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/healthz/email", EmailHealthHandler(&stubSender{healthy: false}))

	resp := performRequest(t, app, "/healthz/email")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func performRequest(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

type stubSender struct {
	healthy bool
}

func (s *stubSender) Send(ctx context.Context, email provider.Email) (*provider.SendResult, error) {
	return &provider.SendResult{}, nil
}

func (s *stubSender) ValidateConnection(ctx context.Context) bool {
	return s.healthy
}
