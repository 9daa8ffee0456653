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

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// GetCart godoc
//
//	@Summary	List the authenticated user's cart items
//	@Tags		Cart
//	@Produce	json
//	@Success	200	{array}	models.CartItem
//	@Security	BearerAuth
//	@Router		/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		items, err := h.cartService.ListItems(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to list cart items", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, items)
	}
}

// AddItem godoc
//
//	@Summary		Add a product to the cart
//	@Description	Always creates a new cart line; repeated adds of the same product are not merged.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddCartItemRequest	true	"Product and quantity"
//	@Success		201		{object}	models.CartItem
//	@Failure		400		{object}	response.ErrorResponse	"Invalid quantity"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		409		{object}	response.ErrorResponse	"Insufficient stock"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		item, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to add cart item", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Cart item added", slog.String("itemId", item.ID.String()))
		response.Success(w, http.StatusCreated, item)
	}
}

// UpdateQuantity godoc
//
//	@Summary	Update a cart line's quantity
//	@Tags		Cart
//	@Accept		json
//	@Produce	json
//	@Param		itemId		path		string							true	"Cart item ID (UUID)"	Format(uuid)
//	@Param		quantity	body		models.UpdateQuantityRequest	true	"New quantity"
//	@Success	200			{object}	response.APIResponse
//	@Failure	400			{object}	response.ErrorResponse	"Invalid quantity"
//	@Failure	404			{object}	response.ErrorResponse	"Cart item or product not found"
//	@Failure	409			{object}	response.ErrorResponse	"Insufficient stock"
//	@Security	BearerAuth
//	@Router		/cart/items/{itemId} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		itemID, err := utils.ParseID(r, "itemId")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.cartService.UpdateItemQuantity(r.Context(), itemID, req.Quantity); err != nil {
			logger.Error("Failed to update cart item", slog.String("itemId", itemID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, nil)
	}
}

// RemoveItem godoc
//
//	@Summary	Remove a cart line
//	@Tags		Cart
//	@Produce	json
//	@Param		itemId	path		string	true	"Cart item ID (UUID)"	Format(uuid)
//	@Success	200		{object}	response.APIResponse
//	@Failure	404		{object}	response.ErrorResponse	"Cart item not found"
//	@Security	BearerAuth
//	@Router		/cart/items/{itemId} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		itemID, err := utils.ParseID(r, "itemId")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.cartService.RemoveItem(r.Context(), itemID); err != nil {
			logger.Error("Failed to remove cart item", slog.String("itemId", itemID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, nil)
	}
}
