package adaptor

import (
	"github.com/asimov86/ecommerce-api/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Product: NewProductHandler(service.Product, log),
		Cart:    NewCartHandler(service.Cart, log),
		Order:   NewOrderHandler(service.Order, log),
	}
}
