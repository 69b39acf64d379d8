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
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartService interface {
	AddItem(ctx context.Context, userID uuid.UUID, req *request.AddCartItemRequest) (*response.CartResponse, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, req *request.UpdateCartItemRequest) (*response.CartResponse, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, req *request.RemoveCartItemRequest) (*response.CartResponse, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*response.CartResponse, error)
}

// cartService owns the stock reservation workflow. Every mutation runs in
// one transaction: the conditional stock decrement and the cart write either
// both land or neither does.
type cartService struct {
	db   database.PgxIface
	repo *repository.Repository
	log  *zap.Logger
}

func NewCartService(db database.PgxIface, repo *repository.Repository, log *zap.Logger) CartService {
	return &cartService{
		db:   db,
		repo: repo,
		log:  log.With(zap.String("service", "cart")),
	}
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *request.AddCartItemRequest) (*response.CartResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Add cart item validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format %s: %w", req.ProductID, err)
	}

	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cart transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cart, err := s.lockOrCreateCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Atomic conditional decrement guards stock; rollback leaves no
	// partial effect when stock is short.
	ok, err := s.repo.Product.DecrementStock(ctx, tx, productID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}
	if !ok {
		s.log.Warn("Insufficient stock",
			zap.String("product_id", productID.String()),
			zap.Int("requested", req.Quantity),
			zap.Int("available", product.Stock),
		)
		return nil, ErrInsufficientStock
	}

	// New line items snapshot name and price at add time; an existing
	// line item only has its quantity incremented.
	item := &entity.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  req.Quantity,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Cart.UpsertItem(ctx, tx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	if err := s.repo.Cart.Touch(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("touch cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cart transaction: %w", err)
	}

	s.log.Info("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
	)

	return s.buildCartResponse(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, req *request.UpdateCartItemRequest) (*response.CartResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update cart item validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format %s: %w", req.ProductID, err)
	}

	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cart transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cart, err := s.repo.Cart.FindByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	current, found := findItem(cart, productID)
	if !found {
		return nil, ErrItemNotFound
	}

	// The already reserved quantity stays reserved; only the delta moves
	// against stock. Decreases credit the difference back.
	delta := req.Quantity - current.Quantity
	switch {
	case delta > 0:
		ok, err := s.repo.Product.DecrementStock(ctx, tx, productID, delta)
		if err != nil {
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
		if !ok {
			return nil, ErrInsufficientStock
		}
	case delta < 0:
		if err := s.repo.Product.RestoreStock(ctx, tx, productID, -delta); err != nil {
			return nil, fmt.Errorf("restore stock: %w", err)
		}
	}

	if err := s.repo.Cart.SetItemQuantity(ctx, tx, cart.ID, productID, req.Quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	if err := s.repo.Cart.Touch(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("touch cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cart transaction: %w", err)
	}

	s.log.Info("Cart item updated",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("delta", delta),
	)

	return s.buildCartResponse(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, req *request.RemoveCartItemRequest) (*response.CartResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Remove cart item validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format %s: %w", req.ProductID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cart transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cart, err := s.repo.Cart.FindByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Removing a product that was never in the cart is a no-op success.
	if current, found := findItem(cart, productID); found {
		if err := s.repo.Product.RestoreStock(ctx, tx, productID, current.Quantity); err != nil {
			return nil, fmt.Errorf("restore stock: %w", err)
		}
		if err := s.repo.Cart.RemoveItem(ctx, tx, cart.ID, productID); err != nil {
			return nil, fmt.Errorf("remove cart item: %w", err)
		}
		if err := s.repo.Cart.Touch(ctx, tx, cart.ID); err != nil {
			return nil, fmt.Errorf("touch cart: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cart transaction: %w", err)
	}

	s.log.Info("Cart item removed",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
	)

	return s.buildCartResponse(ctx, userID)
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*response.CartResponse, error) {
	return s.buildCartResponse(ctx, userID)
}

// ==================== HELPER METHODS ====================

// lockOrCreateCart returns the user's cart locked for update, creating it
// lazily on first use. Creation is idempotent: when a concurrent request
// wins the insert, the re-read picks up the winner's row.
func (s *cartService) lockOrCreateCart(ctx context.Context, tx database.Tx, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.repo.Cart.FindByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &entity.Cart{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID: userID,
	}

	if err := s.repo.Cart.Create(ctx, tx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart, err = s.repo.Cart.FindByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("find created cart: %w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("cart for user %s missing after create", userID.String())
	}

	if err := s.repo.User.SetCartID(ctx, tx, userID, cart.ID); err != nil {
		return nil, fmt.Errorf("link cart to user: %w", err)
	}

	s.log.Info("Cart created",
		zap.String("user_id", userID.String()),
		zap.String("cart_id", cart.ID.String()),
	)

	return cart, nil
}

func (s *cartService) buildCartResponse(ctx context.Context, userID uuid.UUID) (*response.CartResponse, error) {
	cart, err := s.repo.Cart.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	resp := response.CartToResponse(cart)
	return &resp, nil
}

func findItem(cart *entity.Cart, productID uuid.UUID) (entity.CartItem, bool) {
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return entity.CartItem{}, false
}
