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

type OrderRepository interface {
	Create(ctx context.Context, q database.Queryer, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	UpdatePayment(ctx context.Context, order *entity.Order) error
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

const orderColumns = `id, user_id, address, city, postal_code, country,
	       payment_method, total_price, is_paid, paid_at,
	       payment_id, payment_status, payment_update_time, payment_email,
	       created_at, updated_at`

// Create inserts the order and its items. Runs inside the order placement
// transaction together with the cart delete.
func (r *orderRepository) Create(ctx context.Context, q database.Queryer, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, user_id, address, city, postal_code, country,
		                    payment_method, total_price, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Address,
		order.City,
		order.PostalCode,
		order.Country,
		order.PaymentMethod,
		order.TotalPrice,
		order.IsPaid,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("user_id", order.UserID.String()),
		)
		return fmt.Errorf("create order for user %s: %w", order.UserID.String(), err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range order.Items {
		_, err := q.Exec(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			r.log.Error("Failed to create order item",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
			)
			return fmt.Errorf("create item %s of order %s: %w", item.ProductID.String(), order.ID.String(), err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := r.scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return nil, fmt.Errorf("find order by ID %s: %w", id.String(), err)
	}
	if order == nil {
		return nil, nil
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find orders by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find orders for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func (r *orderRepository) UpdatePayment(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET is_paid = $2, paid_at = $3, payment_id = $4, payment_status = $5,
		    payment_update_time = $6, payment_email = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		order.ID,
		order.IsPaid,
		order.PaidAt,
		order.Payment.ID,
		order.Payment.Status,
		order.Payment.UpdateTime,
		order.Payment.EmailAddress,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update order payment",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return fmt.Errorf("update payment of order %s: %w", order.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", order.ID.String())
	}

	return nil
}

func (r *orderRepository) scanOrder(row pgx.Row) (*entity.Order, error) {
	var order entity.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Address,
		&order.City,
		&order.PostalCode,
		&order.Country,
		&order.PaymentMethod,
		&order.TotalPrice,
		&order.IsPaid,
		&order.PaidAt,
		&order.Payment.ID,
		&order.Payment.Status,
		&order.Payment.UpdateTime,
		&order.Payment.EmailAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	query := `
		SELECT order_id, product_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		r.log.Error("Failed to load order items",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
		)
		return nil, fmt.Errorf("load items of order %s: %w", orderID.String(), err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var item entity.OrderItem
		err := rows.Scan(
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
		)
		if err != nil {
			r.log.Error("Failed to scan order item row", zap.Error(err))
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}
