package handlers

import (
	"log/slog"
	"net/http"

	"shoplite/internal/api/middleware"
	appErrors "shoplite/internal/errors"
	"shoplite/internal/models"
	service "shoplite/internal/services"
	"shoplite/internal/utils"
	"shoplite/internal/utils/response"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

// Register godoc
//
//	@Summary	Register a new user account
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		user	body		models.RegisterRequest	true	"Registration details"
//	@Success	201		{object}	models.User
//	@Failure	400		{object}	response.ErrorResponse	"Validation error"
//	@Failure	409		{object}	response.ErrorResponse	"Username already taken"
//	@Router		/users/register [post]
func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to register user", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("User registered", slog.String("userId", user.ID.String()))
		response.Success(w, http.StatusCreated, user)
	}
}

// Login godoc
//
//	@Summary	Authenticate and obtain a JWT
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		models.LoginRequest	true	"Username and password"
//	@Success	200			{object}	models.LoginResponse
//	@Failure	401			{object}	models.LoginResponse	"Invalid credentials"
//	@Failure	429			{object}	models.LoginResponse	"Too many attempts"
//	@Router		/users/login [post]
func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Error("Login failed", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		if !result.Success {
			status := http.StatusUnauthorized
			if result.RetryAfter > 0 {
				status = http.StatusTooManyRequests
				logger.Warn("Login rate limited", slog.String("username", req.Username))
			}

			response.WriteJson(w, status, result)

			return
		}

		logger.Info("User logged in", slog.String("username", req.Username))
		response.Success(w, http.StatusOK, result)
	}
}

// GetProfile godoc
//
//	@Summary	Get the authenticated user's profile
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	models.User
//	@Security	BearerAuth
//	@Router		/users/me [get]
func (h *UserHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to load profile", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

// ListUsers godoc
//
//	@Summary	List all users (admin)
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{array}	models.User
//	@Security	BearerAuth
//	@Router		/admin/users [get]
func (h *UserHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		users, err := h.userService.ListUsers(r.Context())
		if err != nil {
			logger.Error("Failed to list users", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, users)
	}
}

// DeleteUser godoc
//
//	@Summary	Delete a user (admin)
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID (UUID)"	Format(uuid)
//	@Success	200	{object}	response.APIResponse
//	@Failure	404	{object}	response.ErrorResponse	"User not found"
//	@Security	BearerAuth
//	@Router		/admin/users/{id} [delete]
func (h *UserHandler) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.userService.DeleteUser(r.Context(), id); err != nil {
			logger.Error("Failed to delete user", slog.String("userId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, nil)
	}
}
