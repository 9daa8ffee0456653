package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoplite/internal/api/handlers"
	appErrors "shoplite/internal/errors"
	"shoplite/internal/models"
	"shoplite/internal/services/mocks"
	"shoplite/internal/testutils"
	"shoplite/internal/utils/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListProductsHandler(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)

	t.Run("Success - Full Catalog", func(t *testing.T) {
		// Arrange
		products := []*models.Product{
			{ID: uuid.New(), Name: "Keyboard", Price: 50.0, Stock: 10},
			{ID: uuid.New(), Name: "Mouse", Price: 25.0, Stock: 30},
		}

		mockProductService.On("SearchProducts", mock.Anything, "").Return(products, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.ListProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Success - Search Query Passed Through", func(t *testing.T) {
		// Arrange
		products := []*models.Product{
			{ID: uuid.New(), Name: "Mechanical Keyboard", Price: 89.99, Stock: 20},
		}

		mockProductService.On("SearchProducts", mock.Anything, "keyboard").Return(products, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products?q=keyboard", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.ListProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}

func TestGetProductHandler(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		expected := &models.Product{ID: productID, Name: "Keyboard", Price: 50.0, Stock: 10}

		mockProductService.On("GetProductByID", mock.Anything, productID).Return(expected, nil).Once()

		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products/"+productID.String(), nil, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		dataBytes, err := json.Marshal(resp.Data)
		assert.NoError(t, err)

		var respProduct models.Product
		err = json.Unmarshal(dataBytes, &respProduct)
		assert.NoError(t, err)
		assert.Equal(t, productID, respProduct.ID)
		assert.Equal(t, "Keyboard", respProduct.Name)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductService.On("GetProductByID", mock.Anything, productID).
			Return(nil, appErrors.NotFoundError("Product not found")).Once()

		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products/"+productID.String(), nil, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid ID", func(t *testing.T) {
		// Arrange
		pathParams := map[string]string{"id": "not-a-uuid"}
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products/not-a-uuid", nil, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "GetProductByID")
	})
}

func TestCreateProductHandler(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	adminID := uuid.New()

	t.Run("Success - Product Created", func(t *testing.T) {
		// Arrange
		created := &models.Product{ID: uuid.New(), Name: "Keyboard", Price: 50.0, Stock: 10}

		mockProductService.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req *models.CreateProductRequest) bool {
			return req.Name == "Keyboard" && req.Price == 50.0 && req.Stock == 10
		})).Return(created, nil).Once()

		bodyBytes, _ := json.Marshal(models.CreateProductRequest{Name: "Keyboard", Price: 50.0, Stock: 10})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/admin/products", bytes.NewReader(bodyBytes), adminID, models.RoleAdmin, nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Name", func(t *testing.T) {
		// Arrange
		bodyBytes := []byte(`{"price": 50.0, "stock": 10}`)
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/admin/products", bytes.NewReader(bodyBytes), adminID, models.RoleAdmin, nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "CreateProduct")
	})

	t.Run("Failure - Negative Price", func(t *testing.T) {
		// Arrange
		bodyBytes := []byte(`{"name": "Keyboard", "price": -1.0, "stock": 10}`)
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/admin/products", bytes.NewReader(bodyBytes), adminID, models.RoleAdmin, nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateProductHandler(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	adminID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Price Updated", func(t *testing.T) {
		// Arrange
		updated := &models.Product{ID: productID, Name: "Keyboard", Price: 59.99, Stock: 10}

		mockProductService.On("UpdateProduct", mock.Anything, productID, mock.MatchedBy(func(req *models.UpdateProductRequest) bool {
			return req.Price != nil && *req.Price == 59.99 && req.Name == nil
		})).Return(updated, nil).Once()

		bodyBytes := []byte(`{"price": 59.99}`)
		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/admin/products/"+productID.String(), bytes.NewReader(bodyBytes), adminID, models.RoleAdmin, pathParams)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.UpdateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductService.On("UpdateProduct", mock.Anything, productID, mock.AnythingOfType("*models.UpdateProductRequest")).
			Return(nil, appErrors.NotFoundError("Product not found")).Once()

		bodyBytes := []byte(`{"price": 59.99}`)
		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/admin/products/"+productID.String(), bytes.NewReader(bodyBytes), adminID, models.RoleAdmin, pathParams)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.UpdateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}

func TestDeleteProductHandler(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	adminID := uuid.New()
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockProductService.On("DeleteProduct", mock.Anything, productID).Return(nil).Once()

		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/admin/products/"+productID.String(), nil, adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.DeleteProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductService.On("DeleteProduct", mock.Anything, productID).
			Return(appErrors.NotFoundError("Product not found")).Once()

		pathParams := map[string]string{"id": productID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/admin/products/"+productID.String(), nil, adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := productHandler.DeleteProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}
