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

func TestRegisterHandler(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	t.Run("Success - User Registered", func(t *testing.T) {
		// Arrange
		created := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}

		mockUserService.On("Register", mock.Anything, mock.MatchedBy(func(req *models.RegisterRequest) bool {
			return req.Username == "alice" && req.Password == "secret123"
		})).Return(created, nil).Once()

		bodyBytes, _ := json.Marshal(models.RegisterRequest{Username: "alice", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Register()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Username Taken", func(t *testing.T) {
		// Arrange
		mockUserService.On("Register", mock.Anything, mock.AnythingOfType("*models.RegisterRequest")).
			Return(nil, appErrors.DuplicateEntryError("Username is already taken")).Once()

		bodyBytes, _ := json.Marshal(models.RegisterRequest{Username: "alice", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Register()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, resp.Error.Code)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Password Too Short", func(t *testing.T) {
		// Arrange
		bodyBytes := []byte(`{"username": "alice", "password": "abc"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Register()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "Register")
	})
}

func TestLoginHandler(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	t.Run("Success - Token Issued", func(t *testing.T) {
		// Arrange
		result := &models.LoginResponse{
			Success:   true,
			Token:     "some.jwt.token",
			Role:      models.RoleUser,
			ExpiresIn: 86400,
		}

		mockUserService.On("Login", mock.Anything, mock.MatchedBy(func(req *models.LoginRequest) bool {
			return req.Username == "alice"
		})).Return(result, nil).Once()

		bodyBytes, _ := json.Marshal(models.LoginRequest{Username: "alice", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Login()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Credentials", func(t *testing.T) {
		// Arrange
		result := &models.LoginResponse{
			Success:        false,
			RemainingTries: 4,
			Message:        "Invalid credentials",
		}

		mockUserService.On("Login", mock.Anything, mock.AnythingOfType("*models.LoginRequest")).Return(result, nil).Once()

		bodyBytes, _ := json.Marshal(models.LoginRequest{Username: "alice", Password: "wrong"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Login()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var resp models.LoginResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 4, resp.RemainingTries)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		result := &models.LoginResponse{
			Success:    false,
			RetryAfter: 30,
			Message:    "Too many login attempts",
		}

		mockUserService.On("Login", mock.Anything, mock.AnythingOfType("*models.LoginRequest")).Return(result, nil).Once()

		bodyBytes, _ := json.Marshal(models.LoginRequest{Username: "alice", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Login()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)

		var resp models.LoginResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, 30, resp.RetryAfter)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Password", func(t *testing.T) {
		// Arrange
		bodyBytes := []byte(`{"username": "alice"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", bytes.NewReader(bodyBytes), nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.Login()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "Login")
	})
}

func TestGetProfileHandler(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: userID, Username: "alice", Role: models.RoleUser}

		mockUserService.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/users/me", nil, userID, models.RoleUser, nil)
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.GetProfile()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/users/me", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.GetProfile()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID")
	})
}

func TestListUsersHandler(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)
	adminID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		users := []models.User{
			{ID: uuid.New(), Username: "alice", Role: models.RoleUser},
			{ID: uuid.New(), Username: "bob", Role: models.RoleAdmin},
		}

		mockUserService.On("ListUsers", mock.Anything).Return(users, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/admin/users", nil, adminID, models.RoleAdmin, nil)
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.ListUsers()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)
	adminID := uuid.New()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService.On("DeleteUser", mock.Anything, userID).Return(nil).Once()

		pathParams := map[string]string{"id": userID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/admin/users/"+userID.String(), nil, adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.DeleteUser()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockUserService.On("DeleteUser", mock.Anything, userID).
			Return(appErrors.NotFoundError("User not found")).Once()

		pathParams := map[string]string{"id": userID.String()}
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/admin/users/"+userID.String(), nil, adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		// Act
		handler := userHandler.DeleteUser()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockUserService.AssertExpectations(t)
	})
}
