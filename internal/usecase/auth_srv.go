package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/internal/dto/response"
	"github.com/asimov86/ecommerce-api/pkg/mailer"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, req *request.LoginRequest, userAgent, ipAddress *string) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	mail   mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		mail:   mail,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

// Register creates an inactive account and emails a verification link. No
// session is issued until the account is verified.
func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     false,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token := &entity.VerificationToken{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		Token:     utils.GenerateToken(),
		ExpiresAt: now.Add(time.Duration(s.config.Token.VerifyExpiryHours) * time.Hour),
	}

	if err := s.repo.Token.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("create verification token: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	go s.sendVerificationEmail(user, token.Token)

	resp := response.UserToResponse(user)
	return &resp, nil
}

// VerifyEmail activates the account behind a valid verification token.
// Tokens are single use.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	vt, err := s.repo.Token.FindValid(ctx, token)
	if err != nil {
		return fmt.Errorf("find verification token: %w", err)
	}
	if vt == nil {
		return ErrInvalidOrExpiredToken
	}

	user, err := s.repo.User.FindByID(ctx, vt.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.repo.Token.MarkAsUsed(ctx, vt.ID); err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}

	if !user.IsActive {
		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
	}

	s.log.Info("User verified",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, userAgent, ipAddress *string) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Login failed, bad password", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountNotActive
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info("Session revoked")
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Change password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// ForgotPassword stores a reset token and mails the reset link. An unknown
// email gets the same success answer so the endpoint cannot be used to probe
// which addresses are registered.
func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Forgot password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Info("Password reset requested for unknown email", zap.String("email", req.Email))
		return nil
	}

	now := time.Now()
	token := utils.GenerateToken()
	expiresAt := now.Add(time.Duration(s.config.Token.ResetExpiryMinutes) * time.Minute)

	user.ResetToken = &token
	user.ResetExpiresAt = &expiresAt
	user.UpdatedAt = now
	if err := s.repo.User.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.log.Info("Password reset token issued", zap.String("user_id", user.ID.String()))

	go s.sendResetEmail(user, token)

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reset password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	user, err := s.repo.User.FindByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil || user.ResetExpiresAt == nil || user.ResetExpiresAt.Before(time.Now()) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetExpiresAt = nil
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// All live sessions die with the old password.
	if err := s.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
		s.log.Warn("Failed to revoke sessions after password reset",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
	}

	s.log.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) sendVerificationEmail(user *entity.User, token string) {
	link := fmt.Sprintf("%s/api/users/verify?token=%s", s.config.App.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome! Please verify your email address by opening the link below:\n\n%s\n\nThe link expires in %d hours.\n",
		user.Name,
		link,
		s.config.Token.VerifyExpiryHours,
	)

	if err := s.mail.Send(user.Email, "Verify your email", body); err != nil {
		s.log.Warn("Failed to send verification email",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return
	}

	s.log.Info("Verification email sent", zap.String("email", user.Email))
}

func (s *authService) sendResetEmail(user *entity.User, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Open the link below to pick a new password:\n\n%s\n\nThe link expires in %d minutes. If you did not request this, ignore this email.\n",
		user.Name,
		link,
		s.config.Token.ResetExpiryMinutes,
	)

	if err := s.mail.Send(user.Email, "Reset your password", body); err != nil {
		s.log.Warn("Failed to send password reset email",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return
	}

	s.log.Info("Password reset email sent", zap.String("email", user.Email))
}
