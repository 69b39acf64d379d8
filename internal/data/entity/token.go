package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken backs the account activation link sent at registration.
type VerificationToken struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	IsUsed    bool      `db:"is_used"`
}
