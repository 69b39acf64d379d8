package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/internal/dto/request"
	"github.com/asimov86/ecommerce-api/internal/dto/response"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *request.CreateProductRequest) (*response.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*response.ProductResponse, error)
	ListProducts(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.ProductResponse], error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *request.UpdateProductRequest) (*response.ProductResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	BulkImport(ctx context.Context, req *request.BulkImportRequest) (*response.BulkImportResponse, error)
}

type productService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, log *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		log:         log.With(zap.String("service", "product")),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *request.CreateProductRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create product validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	existing, err := s.productRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("check product name: %w", err)
	}
	if existing != nil {
		return nil, ErrProductExists
	}

	now := time.Now()
	product := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*response.ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) ListProducts(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
	products, err := s.productRepo.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	total, err := s.productRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	responses := make([]response.ProductResponse, len(products))
	for i, product := range products {
		responses[i] = response.ProductToResponse(product)
	}

	return response.NewPaginatedResponse(responses, page.Page, page.Limit(), total), nil
}

func (s *productService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *request.UpdateProductRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update product validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil && *req.Name != product.Name {
		existing, err := s.productRepo.FindByName(ctx, *req.Name)
		if err != nil {
			return nil, fmt.Errorf("check product name: %w", err)
		}
		if existing != nil {
			return nil, ErrProductExists
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.log.Info("Product updated", zap.String("product_id", product.ID.String()))

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

// BulkImport creates products best effort; rows that fail validation or
// collide on name are reported per index and do not stop the rest.
func (s *productService) BulkImport(ctx context.Context, req *request.BulkImportRequest) (*response.BulkImportResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Bulk import validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	result := &response.BulkImportResponse{
		Errors: make(map[string]string),
	}

	for i, item := range req.Products {
		item := item
		if _, err := s.CreateProduct(ctx, &item); err != nil {
			result.Failed++
			result.Errors[fmt.Sprintf("products[%d]", i)] = err.Error()
			continue
		}
		result.Imported++
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}

	s.log.Info("Bulk import finished",
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}
