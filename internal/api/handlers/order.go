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

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

// CreateOrder godoc
//
//	@Summary		Create a pending order from the cart
//	@Description	Snapshots the authenticated user's cart into a PENDING order. Stock is validated but not decremented.
//	@Tags			Orders
//	@Produce		json
//	@Success		201	{object}	models.Order			"Created pending order"
//	@Failure		400	{object}	response.ErrorResponse	"Empty cart"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Failure		409	{object}	response.ErrorResponse	"Insufficient stock"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized order creation attempt")
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		order, err := h.orderService.CreatePendingOrder(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to create order", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order created", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusCreated, order)
	}
}

// PayOrder godoc
//
//	@Summary		Pay a pending order
//	@Description	Marks the order PAID, decrements stock for every line and clears the user's cart, atomically.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			payment	body		models.PayOrderRequest	true	"Order to pay"
//	@Success		200		{object}	response.APIResponse
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse	"Order belongs to another user"
//	@Failure		404		{object}	response.ErrorResponse	"Order not found"
//	@Failure		409		{object}	response.ErrorResponse	"Order not pending or insufficient stock"
//	@Security		BearerAuth
//	@Router			/orders/pay [post]
func (h *OrderHandler) PayOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.PayOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.orderService.PayOrder(r.Context(), req.OrderID, claims.UserID); err != nil {
			logger.Error("Failed to pay order", slog.String("orderId", req.OrderID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order paid", slog.String("orderId", req.OrderID.String()))
		response.Success(w, http.StatusOK, nil)
	}
}

// GetOrder godoc
//
//	@Summary	Get an order with its items
//	@Tags		Orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID (UUID)"	Format(uuid)
//	@Success	200	{object}	models.Order
//	@Failure	403	{object}	response.ErrorResponse	"Order belongs to another user"
//	@Failure	404	{object}	response.ErrorResponse	"Order not found"
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), id, claims.UserID)
		if err != nil {
			logger.Error("Failed to get order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//
//	@Summary	List the authenticated user's orders
//	@Tags		Orders
//	@Produce	json
//	@Success	200	{array}	models.Order
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		orders, err := h.orderService.ListMyOrders(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

// CompleteOrder marks the order COMPLETED; CancelOrder marks it CANCELLED.
// Both go through the permissive status update.
func (h *OrderHandler) CompleteOrder() http.HandlerFunc {
	return h.setStatus(models.OrderStatusCompleted)
}

func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return h.setStatus(models.OrderStatusCancelled)
}

// ShipOrder is the admin "dispatch" action.
func (h *OrderHandler) ShipOrder() http.HandlerFunc {
	return h.setStatus(models.OrderStatusShipping)
}

func (h *OrderHandler) setStatus(status models.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		order, err := h.orderService.UpdateStatus(r.Context(), id, status)
		if err != nil {
			logger.Error("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated", slog.String("orderId", id.String()), slog.String("status", string(status)))
		response.Success(w, http.StatusOK, order)
	}
}

// UpdateOrderStatus godoc
//
//	@Summary	Update order status (admin)
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param		status	body		models.UpdateOrderStatusRequest	true	"New status"
//	@Success	200		{object}	models.Order
//	@Failure	404		{object}	response.ErrorResponse	"Order not found"
//	@Security	BearerAuth
//	@Router		/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			logger.Error("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListAllOrders godoc
//
//	@Summary	List all orders (admin)
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{array}	models.Order
//	@Security	BearerAuth
//	@Router		/admin/orders [get]
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			logger.Error("Failed to list all orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}
