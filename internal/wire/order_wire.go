package wire

import (
	"github.com/asimov86/ecommerce-api/internal/adaptor"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(
	r chi.Router,
	orderHandler *adaptor.OrderHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/orders - Place order from cart contents
		r.Post("/api/orders", orderHandler.PlaceOrder)

		// GET /api/orders/myorders - Current user's order history
		r.Get("/api/orders/myorders", orderHandler.ListMyOrders)

		// GET /api/orders/{id} - Order details with user identity
		r.Get("/api/orders/{id}", orderHandler.GetOrder)

		// PUT /api/orders/{id}/pay - Record payment result
		r.Put("/api/orders/{id}/pay", orderHandler.PayOrder)
	})
}
