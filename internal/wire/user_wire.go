package wire

import (
	"github.com/asimov86/ecommerce-api/internal/adaptor"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/users/register - Register new account
	r.Post("/api/users/register", authHandler.Register)

	// GET /api/users/verify?token= - Activate account from email link
	r.Get("/api/users/verify", authHandler.VerifyEmail)

	// POST /api/users/login - Issue session token
	r.Post("/api/users/login", authHandler.Login)

	// POST /api/users/forgot-password - Request reset link
	r.Post("/api/users/forgot-password", authHandler.ForgotPassword)

	// POST /api/users/reset-password?token= - Set new password
	r.Post("/api/users/reset-password", authHandler.ResetPassword)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/users/logout - Revoke current session
		r.Post("/api/users/logout", authHandler.Logout)

		// GET /api/users/profile - Current user profile
		r.Get("/api/users/profile", userHandler.GetProfile)

		// PUT /api/users/change-password - Change password
		r.Put("/api/users/change-password", authHandler.ChangePassword)
	})
}
