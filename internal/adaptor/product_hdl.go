package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/internal/usecase"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service usecase.ProductService
	log     *zap.Logger
}

func NewProductHandler(service usecase.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log.With(zap.String("handler", "product")),
	}
}

// ListProducts handles GET /api/products (public)
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{
		Page:    1,
		PerPage: 10,
	}

	// Parse query parameters
	query := r.URL.Query()
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 10)

	products, err := h.service.ListProducts(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list products")
		return
	}

	utils.ResponseSuccess(w, "success", products)
}

// GetProduct handles GET /api/products/{id} (public)
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get product")
		return
	}

	utils.ResponseSuccess(w, "success", product)
}

// ListCategories handles GET /api/products/categories (public)
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list categories")
		return
	}

	utils.ResponseSuccess(w, "success", categories)
}

// CreateProduct handles POST /api/products (protected)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create product")
		return
	}

	utils.ResponseCreated(w, "success", product)
}

// UpdateProduct handles PUT /api/products/{id} (protected)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err, "update product")
		return
	}

	utils.ResponseSuccess(w, "success", product)
}

// DeleteProduct handles DELETE /api/products/{id} (protected)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete product")
		return
	}

	utils.ResponseSuccess(w, "Product deleted", nil)
}

// BulkImport handles POST /api/products/upload-json (protected)
func (h *ProductHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req request.BulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.BulkImport(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "bulk import products")
		return
	}

	utils.ResponseCreated(w, "success", result)
}

// ==================== HELPER METHODS ====================

func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		utils.ResponseBadRequest(w, "Product ID is required", nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid product ID format", nil)
		return uuid.Nil, false
	}

	return id, true
}

// handleServiceError maps product errors to HTTP responses
func (h *ProductHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrProductExists):
		h.log.Warn(operation+" failed - duplicate name", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		h.log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
