package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shikshya-edu/institute-service/internal/auth"
	"github.com/shikshya-edu/institute-service/internal/config"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(config.JWTConfig{
		Secret:        "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
}

func newTestAuthService(repo *mockRepository) (AuthService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAuthService(repo, testTokenManager(), publisher, testLogger(), validator.New())
	return svc, publisher
}

func TestNewAuthService(t *testing.T) {
	tests := []struct {
		name string
	}{
		{name: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(newMockRepository(), testTokenManager(), events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())
			if svc == nil {
				t.Fatal("expected service instance")
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("registered role = %q, want USER", resp.User.Role)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Error("registration should issue both tokens")
	}

	stored, err := repo.User().GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("registered user not stored: %v", err)
	}
	if stored.Password == "sup3rsecret" {
		t.Error("credential stored in plaintext")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeUserRegistered {
		t.Errorf("published events = %v, want one %s event", published, events.TypeUserRegistered)
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != stored.ID {
		t.Errorf("login user id = %q, want %q", login.User.ID, stored.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)

	svc, _ := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Other Jane",
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "jane@example.com", password: "wrongpass1"},
		{name: "unknown email", email: "nobody@example.com", password: "sup3rsecret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := svc.Refresh(context.Background(), &RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("refresh should issue a full token pair")
	}

	if _, err := svc.Refresh(context.Background(), &RefreshRequest{RefreshToken: "garbage"}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() with garbage token error = %v, want ErrInvalidToken", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrongpass1",
		NewPassword:     "an0thersecret",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ChangePassword() with wrong current error = %v, want ErrInvalidCredentials", err)
	}

	err = svc.ChangePassword(context.Background(), resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "sup3rsecret",
		NewPassword:     "an0thersecret",
	})
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "jane@example.com",
		Password: "an0thersecret",
	}); err != nil {
		t.Errorf("Login() with new credential error = %v", err)
	}
}
