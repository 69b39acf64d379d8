package usecase

import (
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/database"
	"github.com/asimov86/ecommerce-api/pkg/mailer"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Product ProductService
	Cart    CartService
	Order   OrderService
}

func NewService(db database.PgxIface, repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(repo, mail, config, log),
		User:    NewUserService(repo.User, log),
		Product: NewProductService(repo.Product, log),
		Cart:    NewCartService(db, repo, log),
		Order:   NewOrderService(db, repo, mail, log),
	}
}
