package repository

import (
	"context"
	"fmt"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)

	// Transactional methods. FindByUserIDForUpdate locks the cart row so
	// concurrent mutations of the same cart serialize.
	FindByUserIDForUpdate(ctx context.Context, q database.Queryer, userID uuid.UUID) (*entity.Cart, error)
	Create(ctx context.Context, q database.Queryer, cart *entity.Cart) error
	UpsertItem(ctx context.Context, q database.Queryer, item *entity.CartItem) error
	SetItemQuantity(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID) error
	Touch(ctx context.Context, q database.Queryer, cartID uuid.UUID) error
	DeleteByUserID(ctx context.Context, q database.Queryer, userID uuid.UUID) error
}

type cartRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCartRepository(db database.PgxIface, log *zap.Logger) CartRepository {
	return &cartRepository{
		db:  db,
		log: log.With(zap.String("repository", "cart")),
	}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart, err := r.findCart(ctx, r.db, query, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	items, err := r.loadItems(ctx, r.db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

func (r *cartRepository) FindByUserIDForUpdate(ctx context.Context, q database.Queryer, userID uuid.UUID) (*entity.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		FOR UPDATE
	`

	cart, err := r.findCart(ctx, q, query, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	items, err := r.loadItems(ctx, q, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// Create is idempotent per user; the unique index on user_id plus
// ON CONFLICT DO NOTHING keeps lazy creation safe under races.
func (r *cartRepository) Create(ctx context.Context, q database.Queryer, cart *entity.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		cart.ID,
		cart.UserID,
		cart.CreatedAt,
		cart.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create cart",
			zap.Error(err),
			zap.String("user_id", cart.UserID.String()),
		)
		return fmt.Errorf("create cart for user %s: %w", cart.UserID.String(), err)
	}

	return nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, q database.Queryer, item *entity.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, name, price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := q.Exec(ctx, query,
		item.CartID,
		item.ProductID,
		item.Name,
		item.Price,
		item.Quantity,
		item.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to upsert cart item",
			zap.Error(err),
			zap.String("cart_id", item.CartID.String()),
			zap.String("product_id", item.ProductID.String()),
		)
		return fmt.Errorf("upsert item %s in cart %s: %w", item.ProductID.String(), item.CartID.String(), err)
	}

	return nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID, qty int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
	`

	result, err := q.Exec(ctx, query, cartID, productID, qty)
	if err != nil {
		r.log.Error("Failed to set cart item quantity",
			zap.Error(err),
			zap.String("cart_id", cartID.String()),
			zap.String("product_id", productID.String()),
		)
		return fmt.Errorf("set quantity of item %s in cart %s: %w", productID.String(), cartID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s not found in cart %s", productID.String(), cartID.String())
	}

	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	_, err := q.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.log.Error("Failed to remove cart item",
			zap.Error(err),
			zap.String("cart_id", cartID.String()),
			zap.String("product_id", productID.String()),
		)
		return fmt.Errorf("remove item %s from cart %s: %w", productID.String(), cartID.String(), err)
	}

	return nil
}

func (r *cartRepository) Touch(ctx context.Context, q database.Queryer, cartID uuid.UUID) error {
	query := `UPDATE carts SET updated_at = NOW() WHERE id = $1`

	_, err := q.Exec(ctx, query, cartID)
	if err != nil {
		return fmt.Errorf("touch cart %s: %w", cartID.String(), err)
	}

	return nil
}

// DeleteByUserID removes the cart row entirely; cart_items cascade.
func (r *cartRepository) DeleteByUserID(ctx context.Context, q database.Queryer, userID uuid.UUID) error {
	query := `DELETE FROM carts WHERE user_id = $1`

	_, err := q.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to delete cart",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("delete cart for user %s: %w", userID.String(), err)
	}

	return nil
}

func (r *cartRepository) findCart(ctx context.Context, q database.Queryer, query string, userID uuid.UUID) (*entity.Cart, error) {
	var cart entity.Cart
	err := q.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cart",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find cart for user %s: %w", userID.String(), err)
	}

	return &cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, q database.Queryer, cartID uuid.UUID) ([]entity.CartItem, error) {
	query := `
		SELECT cart_id, product_id, name, price, quantity, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		r.log.Error("Failed to load cart items",
			zap.Error(err),
			zap.String("cart_id", cartID.String()),
		)
		return nil, fmt.Errorf("load items of cart %s: %w", cartID.String(), err)
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var item entity.CartItem
		err := rows.Scan(
			&item.CartID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan cart item row", zap.Error(err))
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}

	return items, nil
}
