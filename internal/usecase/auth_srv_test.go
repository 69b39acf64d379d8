package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"go.uber.org/zap"
)

func newAuthFixture() (AuthService, *fakeStore, *fakeMailer) {
	store := newFakeStore()
	mail := &fakeMailer{}
	config := &utils.Config{
		App:     utils.AppConfig{BaseURL: "http://localhost:8080"},
		Session: utils.SessionConfig{ExpiryHours: 24},
		Token:   utils.TokenConfig{VerifyExpiryHours: 24, ResetExpiryMinutes: 60},
	}
	svc := NewAuthService(store.repos(), mail, config, zap.NewNop())
	return svc, store, mail
}

func registerRequest() *request.RegisterRequest {
	return &request.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	}
}

// verificationTokenFor digs the issued token out of the store.
func verificationTokenFor(store *fakeStore, email string) string {
	store.mu.Lock()
	defer store.mu.Unlock()
	for token, vt := range store.tokens {
		if vt.Email == email && !vt.IsUsed {
			return token
		}
	}
	return ""
}

func TestRegisterCreatesInactiveAccount(t *testing.T) {
	svc, store, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.IsActive {
		t.Error("new account must start inactive")
	}
	if token := verificationTokenFor(store, "alice@example.com"); token == "" {
		t.Error("expected a verification token to be issued")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(context.Background(), registerRequest())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginBeforeVerification(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, nil, nil)
	if !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
}

func TestVerifyThenLogin(t *testing.T) {
	svc, store, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token := verificationTokenFor(store, "alice@example.com")
	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	// Verification tokens are single use.
	if err := svc.VerifyEmail(context.Background(), token); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken on reuse, got %v", err)
	}

	auth, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, nil, nil)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if auth.Token == "" {
		t.Error("expected a session token")
	}
	if !auth.ExpiresAt.After(time.Now()) {
		t.Error("session must expire in the future")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, store, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token := verificationTokenFor(store, "alice@example.com")
	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	_, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpass",
	}, nil, nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}

	_, err = svc.Login(context.Background(), &request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	}, nil, nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, store, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), verificationTokenFor(store, "alice@example.com")); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	auth, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, nil, nil)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(context.Background(), auth.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	sess, err := store.repos().Session.FindValidSession(context.Background(), auth.Token)
	if err != nil {
		t.Fatalf("FindValidSession: %v", err)
	}
	if sess != nil {
		t.Error("session still valid after logout")
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, store, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), verificationTokenFor(store, "alice@example.com")); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		Email: "alice@example.com",
	}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	var resetToken string
	store.mu.Lock()
	for _, u := range store.users {
		if u.ResetToken != nil {
			resetToken = *u.ResetToken
		}
	}
	store.mu.Unlock()
	if resetToken == "" {
		t.Fatal("expected a reset token on the user")
	}

	if err := svc.ResetPassword(context.Background(), resetToken, &request.ResetPasswordRequest{
		Password: "newsecret1",
	}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// Old password no longer works, new one does.
	if _, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, nil, nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "newsecret1",
	}, nil, nil); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Token is cleared after use.
	if err := svc.ResetPassword(context.Background(), resetToken, &request.ResetPasswordRequest{
		Password: "another123",
	}); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken on reuse, got %v", err)
	}
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if err := svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		Email: "nobody@example.com",
	}); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.ResetPassword(context.Background(), "bogus-token", &request.ResetPasswordRequest{
		Password: "newsecret1",
	})
	if !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, store, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), verificationTokenFor(store, "alice@example.com")); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	userID := mustParseUUID(t, user.ID)
	if err := svc.ChangePassword(context.Background(), userID, &request.ChangePasswordRequest{
		CurrentPassword: "wrongpass",
		NewPassword:     "newsecret1",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
