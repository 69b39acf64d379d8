package repository

import (
	"github.com/asimov86/ecommerce-api/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Token   TokenRepository
	Product ProductRepository
	Cart    CartRepository
	Order   OrderRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Token:   NewTokenRepository(db, log),
		Product: NewProductRepository(db, log),
		Cart:    NewCartRepository(db, log),
		Order:   NewOrderRepository(db, log),
	}
}
