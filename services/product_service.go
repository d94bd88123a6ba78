package services

import (
	"context"
	"errors"
	"strings"

	"bakery-service/models"
	aws_pkg "bakery-service/pkg/aws"
	"bakery-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const featuredLimit = 8

// ProductService covers catalog browsing and admin product maintenance.
type ProductService interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, *ServiceError)
	FeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) *ServiceError
}

type productServiceImpl struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	cache      *CacheManager
	metrics    MetricsRecorder
	logger     *zap.Logger
}

// NewProductService creates a ProductService. cache and metrics may be nil.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	cache *CacheManager,
	metrics MetricsRecorder,
	logger *zap.Logger,
) ProductService {
	return &productServiceImpl{
		products:   products,
		categories: categories,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, *ServiceError) {
	if s.cache != nil {
		if page, ok := s.cache.GetProductList(ctx, filter); ok {
			recordCount(s.metrics, aws_pkg.MetricCacheHits)
			return page, nil
		}
		recordCount(s.metrics, aws_pkg.MetricCacheMisses)
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, internal(err)
	}
	if products == nil {
		products = []models.Product{}
	}

	page := &models.ProductPage{
		Products: products,
		Page:     filter.Page,
		Pages:    calculateTotalPages(total, filter.Limit),
		Total:    total,
	}
	if s.cache != nil {
		s.cache.SetProductList(ctx, filter, page)
	}
	return page, nil
}

func (s *productServiceImpl) FeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.products.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, internal(err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		return nil, internal(err)
	}
	return p, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if req.Price.IsNegative() {
		return nil, badRequest(CodeValidationFailed, "Price cannot be negative")
	}
	if svcErr := s.ensureCategory(ctx, req.CategoryID); svcErr != nil {
		return nil, svcErr
	}

	unit := req.PriceUnit
	if unit == "" {
		unit = models.PriceUnitPiece
	}
	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		PriceUnit:   unit,
		CategoryID:  req.CategoryID,
		Subcategory: req.Subcategory,
		Image:       req.Image,
		Stock:       req.Stock,
		IsAvailable: true,
		IsFeatured:  req.IsFeatured,
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, internal(err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return product, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, badRequest(CodeValidationFailed, "Price cannot be negative")
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.PriceUnit != nil {
		updates["price_unit"] = *req.PriceUnit
	}
	if req.CategoryID != nil {
		if svcErr := s.ensureCategory(ctx, *req.CategoryID); svcErr != nil {
			return nil, svcErr
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Subcategory != nil {
		updates["subcategory"] = *req.Subcategory
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	p, err := s.products.Update(ctx, id, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, internal(err)
	}

	s.invalidate(ctx)
	return p, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Product not found")
	}
	if err != nil {
		return internal(err)
	}
	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *productServiceImpl) UpdateStock(ctx context.Context, id uuid.UUID, stock int) *ServiceError {
	if stock < 0 {
		return badRequest(CodeValidationFailed, "Stock cannot be negative")
	}
	err := s.products.SetStock(ctx, id, stock)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Product not found")
	}
	if err != nil {
		return internal(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *productServiceImpl) ensureCategory(ctx context.Context, id uuid.UUID) *ServiceError {
	_, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return badRequest(CodeValidationFailed, "Category not found")
	}
	if err != nil {
		return internal(err)
	}
	return nil
}

func (s *productServiceImpl) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
