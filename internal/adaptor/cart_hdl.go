package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/internal/usecase"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"go.uber.org/zap"
)

type CartHandler struct {
	service usecase.CartService
	log     *zap.Logger
}

func NewCartHandler(service usecase.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		log:     log.With(zap.String("handler", "cart")),
	}
}

// GetCart handles GET /api/carts/cart (protected)
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get cart")
		return
	}

	utils.ResponseSuccess(w, "success", cart)
}

// AddItem handles POST /api/carts/add (protected)
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	cart, err := h.service.AddItem(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "add cart item")
		return
	}

	utils.ResponseSuccess(w, "success", cart)
}

// UpdateItem handles PUT /api/carts/update (protected)
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update cart item")
		return
	}

	utils.ResponseSuccess(w, "success", cart)
}

// RemoveItem handles DELETE /api/carts/remove (protected)
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RemoveCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "remove cart item")
		return
	}

	utils.ResponseSuccess(w, "success", cart)
}

// handleServiceError maps cart errors to HTTP responses
func (h *CartHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrCartNotFound),
		errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, usecase.ErrItemNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInsufficientStock),
		errors.Is(err, usecase.ErrEmptyCart):
		h.log.Warn(operation+" failed", zap.Error(err))
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
