package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Base
	Name           string     `db:"name"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password"`
	IsActive       bool       `db:"is_active"`
	CartID         *uuid.UUID `db:"cart_id"`
	ResetToken     *string    `db:"reset_token"`
	ResetExpiresAt *time.Time `db:"reset_expires_at"`
}
