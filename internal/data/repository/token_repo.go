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

type TokenRepository interface {
	Create(ctx context.Context, token *entity.VerificationToken) error
	FindValid(ctx context.Context, token string) (*entity.VerificationToken, error)
	MarkAsUsed(ctx context.Context, tokenID uuid.UUID) error
}

type tokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTokenRepository(db database.PgxIface, log *zap.Logger) TokenRepository {
	return &tokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "token")),
	}
}

func (r *tokenRepository) Create(ctx context.Context, token *entity.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (id, user_id, email, token,
		                                 expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Email,
		token.Token,
		token.ExpiresAt,
		token.IsUsed,
		token.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create verification token",
			zap.Error(err),
			zap.String("email", token.Email),
		)
		return fmt.Errorf("create verification token for %s: %w", token.Email, err)
	}

	return nil
}

func (r *tokenRepository) FindValid(ctx context.Context, token string) (*entity.VerificationToken, error) {
	query := `
		SELECT id, user_id, email, token, expires_at, is_used, created_at
		FROM verification_tokens
		WHERE token = $1
		  AND is_used = false
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var vt entity.VerificationToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&vt.ID,
		&vt.UserID,
		&vt.Email,
		&vt.Token,
		&vt.ExpiresAt,
		&vt.IsUsed,
		&vt.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid verification token", zap.Error(err))
		return nil, fmt.Errorf("find valid verification token: %w", err)
	}

	return &vt, nil
}

func (r *tokenRepository) MarkAsUsed(ctx context.Context, tokenID uuid.UUID) error {
	query := `
		UPDATE verification_tokens
		SET is_used = true
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, tokenID)
	if err != nil {
		r.log.Error("Failed to mark verification token as used",
			zap.Error(err),
			zap.String("token_id", tokenID.String()),
		)
		return fmt.Errorf("mark verification token %s as used: %w", tokenID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("verification token %s not found", tokenID.String())
	}

	return nil
}
