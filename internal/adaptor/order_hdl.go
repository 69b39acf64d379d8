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

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// PlaceOrder handles POST /api/orders (protected)
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "place order")
		return
	}

	utils.ResponseCreated(w, "success", order)
}

// ListMyOrders handles GET /api/orders/myorders (protected)
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	orders, err := h.service.ListMyOrders(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "list my orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// GetOrder handles GET /api/orders/{id} (protected)
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// PayOrder handles PUT /api/orders/{id}/pay (protected)
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req request.PayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	order, err := h.service.MarkPaid(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err, "pay order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// ==================== HELPER METHODS ====================

func (h *OrderHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		utils.ResponseBadRequest(w, "Order ID is required", nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid order ID format", nil)
		return uuid.Nil, false
	}

	return id, true
}

// handleServiceError maps order errors to HTTP responses
func (h *OrderHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrEmptyOrder):
		h.log.Warn(operation+" failed - no items", zap.Error(err))
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
