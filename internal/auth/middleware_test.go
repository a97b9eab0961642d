package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/domain"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

func newAnonymousTestApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	m := NewAuthMiddleware(tm, nil)
	app.Post("/signup", m.RequireAnonymous(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAnonymousAllowsUnauthenticated(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	app := newAnonymousTestApp(t, tm)

	cases := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"malformed header", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/signup", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
		})
	}
}

func TestRequireAnonymousRejectsAuthenticatedCaller(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	app := newAnonymousTestApp(t, tm)

	token, _, err := tm.GenerateToken("user-1", domain.RoleDonor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodPost, "/signup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a logged-in caller, got %d", resp.StatusCode)
	}
}
