package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shoplite/internal/cache"
	appErrors "shoplite/internal/errors"
	"shoplite/internal/models"
	repository "shoplite/internal/repositories"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*models.Product, error)
}

type productService struct {
	repo      repository.ProductRepository
	cache     cache.Cache
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache) ProductService {
	return &productService{
		repo:      repo,
		cache:     productCache,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	name := strings.TrimSpace(s.sanitizer.Sanitize(req.Name))
	if name == "" {
		return nil, appErrors.ValidationError("Product name must not be empty")
	}

	if req.Price < 0 {
		return nil, appErrors.ValidationError("Product price must not be negative")
	}

	if req.Stock < 0 {
		return nil, appErrors.ValidationError("Product stock must not be negative")
	}

	product := &models.Product{
		Name:     name,
		Price:    req.Price,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

// GetProductByID is a read-through cache over the repository.
func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product := &models.Product{}

	if s.cache != nil {
		found, err := s.cache.Get(ctx, productCacheKey(id), product)
		if err != nil {
			slog.Warn("Product cache read failed", slog.String("error", err.Error()))
		} else if found {
			return product, nil
		}
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productCacheKey(id), product, 0); err != nil {
			slog.Warn("Product cache write failed", slog.String("error", err.Error()))
		}
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(s.sanitizer.Sanitize(*req.Name))
		if name == "" {
			return nil, appErrors.ValidationError("Product name must not be empty")
		}

		product.Name = name
	}

	if req.Price != nil {
		if *req.Price < 0 {
			return nil, appErrors.ValidationError("Product price must not be negative")
		}

		product.Price = *req.Price
	}

	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, appErrors.ValidationError("Product stock must not be negative")
		}

		product.Stock = *req.Stock
	}

	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, nil
}

// SearchProducts matches names case-insensitively; a blank query lists the
// whole catalog.
func (s *productService) SearchProducts(ctx context.Context, query string) ([]*models.Product, error) {

	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListProducts(ctx)
	}

	products, err := s.repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to search products").WithError(err)
	}

	return products, nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		slog.Warn("Product cache invalidation failed", slog.String("error", err.Error()))
	}
}
