package wire

import (
	"github.com/asimov86/ecommerce-api/internal/adaptor"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProduct(
	r chi.Router,
	productHandler *adaptor.ProductHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/products - List products (paginated)
	r.Get("/api/products", productHandler.ListProducts)

	// GET /api/products/categories - Distinct categories
	r.Get("/api/products/categories", productHandler.ListCategories)

	// GET /api/products/{id} - Product details
	r.Get("/api/products/{id}", productHandler.GetProduct)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/products - Create product
		r.Post("/api/products", productHandler.CreateProduct)

		// POST /api/products/upload-json - Bulk import products
		r.Post("/api/products/upload-json", productHandler.BulkImport)

		// PUT /api/products/{id} - Patch product fields
		r.Put("/api/products/{id}", productHandler.UpdateProduct)

		// DELETE /api/products/{id} - Delete product
		r.Delete("/api/products/{id}", productHandler.DeleteProduct)
	})
}
