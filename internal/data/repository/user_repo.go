package repository

import (
	"context"
	"fmt"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetCartID(ctx context.Context, q database.Queryer, userID, cartID uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, name, email, password, is_active, cart_id,
	       reset_token, reset_expires_at, created_at, updated_at, deleted_at`

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, password, is_active, cart_id,
		                   reset_token, reset_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.CartID,
		user.ResetToken,
		user.ResetExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	user, err := ur.scanUser(ur.db.QueryRow(ctx, query, id))
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`

	user, err := ur.scanUser(ur.db.QueryRow(ctx, query, email))
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func (ur *userRepository) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token = $1 AND deleted_at IS NULL
	`

	user, err := ur.scanUser(ur.db.QueryRow(ctx, query, token))
	if err != nil {
		ur.log.Error("Failed to find user by reset token", zap.Error(err))
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}

	return user, nil
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password = $4, is_active = $5,
		    cart_id = $6, reset_token = $7, reset_expires_at = $8,
		    updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.CartID,
		user.ResetToken,
		user.ResetExpiresAt,
		user.UpdatedAt,
	)

	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found or already deleted", user.ID.String())
	}

	return nil
}

// SetCartID records the lazily created cart on the user row. Runs inside
// the cart mutation transaction.
func (ur *userRepository) SetCartID(ctx context.Context, q database.Queryer, userID, cartID uuid.UUID) error {
	query := `UPDATE users SET cart_id = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	_, err := q.Exec(ctx, query, userID, cartID)
	if err != nil {
		ur.log.Error("Failed to set user cart ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("set cart ID for user %s: %w", userID.String(), err)
	}

	return nil
}

func (ur *userRepository) scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CartID,
		&user.ResetToken,
		&user.ResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
