package response

import (
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
)

type AuthResponse struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CartID    *string   `json:"cart_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}

	if user.CartID != nil {
		cartID := user.CartID.String()
		resp.CartID = &cartID
	}

	return resp
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	resp := AuthResponse{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		IsActive: user.IsActive,
	}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}
