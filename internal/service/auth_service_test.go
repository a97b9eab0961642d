package service

import (
	"context"
	"testing"

	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/config"
	"github.com/spec-kit/food-donation-service/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *domain.User) {
	t.Helper()

	users := newFakeUserRepo()
	hash, err := auth.HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := users.seed(&domain.User{
		FirstName:    "Dana",
		LastName:     "Miller",
		Email:        "dana@example.org",
		PasswordHash: hash,
		Role:         domain.RoleDonor,
	})

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30}}
	return NewAuthService(cfg, users), users, user
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, seeded := newAuthFixture(t)

	user, token, expiresAt, err := svc.Login(context.Background(), "  DANA@example.org ", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("expected user %s, got %s", seeded.ID, user.ID)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatal("missing token or expiry")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SubjectID != seeded.ID || claims.Role != domain.RoleDonor {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "dana@example.org", "nope"},
		{"unknown email", "ghost@example.org", "hunter22"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Login(context.Background(), tc.email, tc.password)
			if code := domainCode(t, err); code != "UNAUTHORIZED" {
				t.Fatalf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, seeded := newAuthFixture(t)
	phone := "555-0202"

	updated, err := svc.UpdateProfile(context.Background(), seeded.ID, ProfileUpdateInput{
		FirstName: "Dan",
		Phone:     &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Dan" {
		t.Fatalf("first name not updated: %s", updated.FirstName)
	}
	if updated.LastName != "Miller" {
		t.Fatalf("blank fields must not overwrite: %s", updated.LastName)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatal("phone not updated")
	}

	stored, err := users.GetByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.FirstName != "Dan" {
		t.Fatal("update not persisted")
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.UpdateProfile(context.Background(), "missing", ProfileUpdateInput{FirstName: "X"})
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}
