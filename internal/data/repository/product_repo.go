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

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	FindByName(ctx context.Context, name string) (*entity.Product, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	CountAll(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Stock mutations run inside the cart transaction.
	DecrementStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) (bool, error)
	RestoreStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) error
}

type productRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProductRepository(db database.PgxIface, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:  db,
		log: log.With(zap.String("repository", "product")),
	}
}

const productColumns = `id, name, description, price, stock, category, image_url, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock, category, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create product",
			zap.Error(err),
			zap.String("name", product.Name),
		)
		return fmt.Errorf("create product %s: %w", product.Name, err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	product, err := r.scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find product by ID",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return nil, fmt.Errorf("find product by ID %s: %w", id.String(), err)
	}

	return product, nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name = $1
	`

	product, err := r.scanProduct(r.db.QueryRow(ctx, query, name))
	if err != nil {
		r.log.Error("Failed to find product by name",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("find product by name %s: %w", name, err)
	}

	return product, nil
}

func (r *productRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all products",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all products limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var product entity.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Stock,
			&product.Category,
			&product.ImageURL,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan product row", zap.Error(err))
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM products`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count products", zap.Error(err))
		return 0, fmt.Errorf("count all products: %w", err)
	}

	return count, nil
}

func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products ORDER BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			r.log.Error("Failed to scan category row", zap.Error(err))
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
		    category = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.ImageURL,
		product.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update product",
			zap.Error(err),
			zap.String("product_id", product.ID.String()),
		)
		return fmt.Errorf("update product %s: %w", product.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", product.ID.String())
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete product",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return fmt.Errorf("delete product %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", id.String())
	}

	r.log.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// DecrementStock debits qty atomically. The stock >= qty guard in the WHERE
// clause is what keeps stock non-negative under concurrent requests; a false
// return means the product is missing or stock is insufficient.
func (r *productRepository) DecrementStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := q.Exec(ctx, query, id, qty)
	if err != nil {
		r.log.Error("Failed to decrement stock",
			zap.Error(err),
			zap.String("product_id", id.String()),
			zap.Int("qty", qty),
		)
		return false, fmt.Errorf("decrement stock of product %s by %d: %w", id.String(), qty, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *productRepository) RestoreStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := q.Exec(ctx, query, id, qty)
	if err != nil {
		r.log.Error("Failed to restore stock",
			zap.Error(err),
			zap.String("product_id", id.String()),
			zap.Int("qty", qty),
		)
		return fmt.Errorf("restore stock of product %s by %d: %w", id.String(), qty, err)
	}

	return nil
}

func (r *productRepository) scanProduct(row pgx.Row) (*entity.Product, error) {
	var product entity.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Category,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}
