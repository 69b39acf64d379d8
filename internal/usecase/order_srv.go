package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/internal/dto/response"
	"github.com/asimov86/ecommerce-api/pkg/database"
	"github.com/asimov86/ecommerce-api/pkg/mailer"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *request.CreateOrderRequest) (*response.OrderResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*response.OrderDetailResponse, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]response.OrderResponse, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, req *request.PayOrderRequest) (*response.OrderResponse, error)
}

type orderService struct {
	db   database.PgxIface
	repo *repository.Repository
	mail mailer.Mailer
	log  *zap.Logger
}

func NewOrderService(db database.PgxIface, repo *repository.Repository, mail mailer.Mailer, log *zap.Logger) OrderService {
	return &orderService{
		db:   db,
		repo: repo,
		mail: mail,
		log:  log.With(zap.String("service", "order")),
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *request.CreateOrderRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Place order validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if len(req.OrderItems) == 0 {
		return nil, ErrEmptyOrder
	}

	now := time.Now()
	order := &entity.Order{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:        userID,
		Address:       req.ShippingAddress.Address,
		City:          req.ShippingAddress.City,
		PostalCode:    req.ShippingAddress.PostalCode,
		Country:       req.ShippingAddress.Country,
		PaymentMethod: req.PaymentMethod,
	}

	// The total is always recomputed from the line items; a client-sent
	// total is never trusted.
	for _, item := range req.OrderItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product ID format %s: %w", item.ProductID, err)
		}

		order.Items = append(order.Items, entity.OrderItem{
			OrderID:   order.ID,
			ProductID: productID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
		order.TotalPrice += item.Price * float64(item.Quantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.Order.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The cart is consumed by checkout. Stock was already reserved when
	// the items went into the cart, so nothing moves against stock here.
	if err := s.repo.Cart.DeleteByUserID(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("consume cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order transaction: %w", err)
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("items", len(order.Items)),
	)

	go s.sendConfirmationEmail(userID, order)

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*response.OrderDetailResponse, error) {
	order, err := s.repo.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	user, err := s.repo.User.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("get order user: %w", err)
	}

	resp := &response.OrderDetailResponse{
		OrderResponse: response.OrderToResponse(order),
	}
	if user != nil {
		resp.User = response.OrderUserResponse{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		}
	}

	return resp, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]response.OrderResponse, error) {
	orders, err := s.repo.Order.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	responses := make([]response.OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = response.OrderToResponse(order)
	}

	return responses, nil
}

func (s *orderService) MarkPaid(ctx context.Context, orderID uuid.UUID, req *request.PayOrderRequest) (*response.OrderResponse, error) {
	order, err := s.repo.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.UpdatedAt = now
	order.Payment = entity.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}

	if err := s.repo.Order.UpdatePayment(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	s.log.Info("Order marked as paid",
		zap.String("order_id", order.ID.String()),
	)

	resp := response.OrderToResponse(order)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// sendConfirmationEmail is best effort; a mail failure never fails the order.
func (s *orderService) sendConfirmationEmail(userID uuid.UUID, order *entity.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		s.log.Warn("Skipping order confirmation email, user lookup failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for your order!\n\nOrder ID: %s\nItems: %d\nTotal: %.2f\nPayment method: %s\n\nWe will let you know once it ships.\n",
		user.Name,
		order.ID.String(),
		len(order.Items),
		order.TotalPrice,
		order.PaymentMethod,
	)

	if err := s.mail.Send(user.Email, "Order confirmation", body); err != nil {
		s.log.Warn("Failed to send order confirmation email",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return
	}

	s.log.Info("Order confirmation email sent",
		zap.String("order_id", order.ID.String()),
		zap.String("email", user.Email),
	)
}
