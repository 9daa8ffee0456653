package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	cacheMocks "shoplite/internal/cache/mocks"
	appErrors "shoplite/internal/errors"
	"shoplite/internal/models"
	"shoplite/internal/repositories/mocks"
	service "shoplite/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(mocks.ProductRepository)
	productService := service.NewProductService(mockRepo, nil)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		req := &models.CreateProductRequest{Name: "Mechanical Keyboard", Price: 89.99, Stock: 20}

		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := productService.CreateProduct(ctx, req)

		assert.NoError(t, err)
		assert.NotNil(t, product)
		assert.Equal(t, "Mechanical Keyboard", product.Name)
		assert.Equal(t, 89.99, product.Price)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Strips markup from the name", func(t *testing.T) {
		ctx := context.Background()
		req := &models.CreateProductRequest{Name: "<script>alert(1)</script>Mouse", Price: 25.0, Stock: 5}

		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := productService.CreateProduct(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "Mouse", product.Name)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Name reduces to empty", func(t *testing.T) {
		ctx := context.Background()
		req := &models.CreateProductRequest{Name: "<b></b>", Price: 25.0, Stock: 5}

		product, err := productService.CreateProduct(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, product)

		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)

		mockRepo.AssertNotCalled(t, "CreateProduct")
	})

	t.Run("Failure - Negative price", func(t *testing.T) {
		ctx := context.Background()
		req := &models.CreateProductRequest{Name: "Mouse", Price: -1.0, Stock: 5}

		product, err := productService.CreateProduct(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, product)

		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
	})
}

func TestProductService_GetProductByID(t *testing.T) {

	t.Run("Cache miss falls through to the repository", func(t *testing.T) {
		mockRepo := mocks.NewProductRepository(t)
		mockCache := cacheMocks.NewCache(t)
		productService := service.NewProductService(mockRepo, mockCache)

		ctx := context.Background()
		productID := uuid.New()
		key := fmt.Sprintf("product:%s", productID)
		expected := &models.Product{ID: productID, Name: "Keyboard", Price: 50.0, Stock: 10}

		mockCache.On("Get", ctx, key, mock.AnythingOfType("*models.Product")).Return(false, nil).Once()
		mockRepo.On("GetProductByID", ctx, productID).Return(expected, nil).Once()
		mockCache.On("Set", ctx, key, expected, mock.AnythingOfType("time.Duration")).Return(nil).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, expected, product)
	})

	t.Run("Cache hit skips the repository", func(t *testing.T) {
		mockRepo := mocks.NewProductRepository(t)
		mockCache := cacheMocks.NewCache(t)
		productService := service.NewProductService(mockRepo, mockCache)

		ctx := context.Background()
		productID := uuid.New()
		key := fmt.Sprintf("product:%s", productID)

		mockCache.On("Get", ctx, key, mock.AnythingOfType("*models.Product")).Return(true, nil).Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Product)
			dest.ID = productID
			dest.Name = "Keyboard"
		}).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, "Keyboard", product.Name)
		mockRepo.AssertNotCalled(t, "GetProductByID")
	})

	t.Run("Cache error is non-fatal", func(t *testing.T) {
		mockRepo := mocks.NewProductRepository(t)
		mockCache := cacheMocks.NewCache(t)
		productService := service.NewProductService(mockRepo, mockCache)

		ctx := context.Background()
		productID := uuid.New()
		key := fmt.Sprintf("product:%s", productID)
		expected := &models.Product{ID: productID, Name: "Keyboard"}

		mockCache.On("Get", ctx, key, mock.AnythingOfType("*models.Product")).Return(false, errors.New("redis down")).Once()
		mockRepo.On("GetProductByID", ctx, productID).Return(expected, nil).Once()
		mockCache.On("Set", ctx, key, expected, mock.AnythingOfType("time.Duration")).Return(errors.New("redis down")).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, expected, product)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, nil)

		ctx := context.Background()
		productID := uuid.New()

		mockRepo.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.Error(t, err)
		assert.Nil(t, product)

		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {

	t.Run("Success - Partial update invalidates the cache", func(t *testing.T) {
		mockRepo := mocks.NewProductRepository(t)
		mockCache := cacheMocks.NewCache(t)
		productService := service.NewProductService(mockRepo, mockCache)

		ctx := context.Background()
		productID := uuid.New()
		key := fmt.Sprintf("product:%s", productID)

		existing := &models.Product{ID: productID, Name: "Keyboard", Price: 50.0, Stock: 10}
		mockRepo.On("GetProductByID", ctx, productID).Return(existing, nil).Once()

		newPrice := 59.99
		mockRepo.On("UpdateProduct", ctx, mock.MatchedBy(func(p *models.Product) bool {
			return p.ID == productID && p.Price == newPrice && p.Name == "Keyboard"
		})).Return(nil).Once()
		mockCache.On("Delete", ctx, key).Return(nil).Once()

		product, err := productService.UpdateProduct(ctx, productID, &models.UpdateProductRequest{Price: &newPrice})

		assert.NoError(t, err)
		assert.Equal(t, newPrice, product.Price)
		assert.Equal(t, "Keyboard", product.Name)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, nil)

		ctx := context.Background()
		productID := uuid.New()

		mockRepo.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		name := "New name"
		product, err := productService.UpdateProduct(ctx, productID, &models.UpdateProductRequest{Name: &name})

		assert.Error(t, err)
		assert.Nil(t, product)

		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {

	t.Run("Success - Invalidates the cache", func(t *testing.T) {
		mockRepo := mocks.NewProductRepository(t)
		mockCache := cacheMocks.NewCache(t)
		productService := service.NewProductService(mockRepo, mockCache)

		ctx := context.Background()
		productID := uuid.New()

		mockRepo.On("DeleteProduct", ctx, productID).Return(nil).Once()
		mockCache.On("Delete", ctx, fmt.Sprintf("product:%s", productID)).Return(nil).Once()

		err := productService.DeleteProduct(ctx, productID)

		assert.NoError(t, err)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, nil)

		ctx := context.Background()
		productID := uuid.New()

		mockRepo.On("DeleteProduct", ctx, productID).Return(sql.ErrNoRows).Once()

		err := productService.DeleteProduct(ctx, productID)

		assert.Error(t, err)

		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestProductService_SearchProducts(t *testing.T) {
	mockRepo := new(mocks.ProductRepository)
	productService := service.NewProductService(mockRepo, nil)

	t.Run("Blank query lists everything", func(t *testing.T) {
		ctx := context.Background()
		expected := []*models.Product{{ID: uuid.New(), Name: "Keyboard"}}

		mockRepo.On("ListProducts", ctx).Return(expected, nil).Once()

		products, err := productService.SearchProducts(ctx, "   ")

		assert.NoError(t, err)
		assert.Equal(t, expected, products)
		mockRepo.AssertNotCalled(t, "SearchProducts")
	})

	t.Run("Non-blank query searches", func(t *testing.T) {
		ctx := context.Background()
		expected := []*models.Product{{ID: uuid.New(), Name: "Mechanical Keyboard"}}

		mockRepo.On("SearchProducts", ctx, "keyboard").Return(expected, nil).Once()

		products, err := productService.SearchProducts(ctx, " keyboard ")

		assert.NoError(t, err)
		assert.Equal(t, expected, products)

		mockRepo.AssertExpectations(t)
	})
}
