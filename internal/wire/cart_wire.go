package wire

import (
	"github.com/asimov86/ecommerce-api/internal/adaptor"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCart(
	r chi.Router,
	cartHandler *adaptor.CartHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	// The whole cart surface is per-user and requires a session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/carts - Current user's cart
		r.Get("/api/carts", cartHandler.GetCart)

		// GET /api/carts/cart - Alias kept for older clients
		r.Get("/api/carts/cart", cartHandler.GetCart)

		// POST /api/carts/add - Add item (reserves stock)
		r.Post("/api/carts/add", cartHandler.AddItem)

		// PUT /api/carts/update - Set item quantity
		r.Put("/api/carts/update", cartHandler.UpdateItem)

		// DELETE /api/carts/remove - Remove item (restores stock)
		r.Delete("/api/carts/remove", cartHandler.RemoveItem)
	})
}
