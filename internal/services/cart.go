package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "shoplite/internal/errors"
	"shoplite/internal/models"
	repository "shoplite/internal/repositories"

	"github.com/google/uuid"
)

type CartService interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart items").WithError(err)
	}

	return items, nil
}

// AddItem validates quantity and stock, then inserts a new cart line. A
// second add of the same product creates a second line rather than merging.
// Stock is checked but never mutated here; only payment touches stock.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error) {

	if req.Quantity <= 0 {
		return nil, appErrors.ValidationError("Quantity must be greater than 0")
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
	}

	if product.Stock < req.Quantity {
		return nil, appErrors.InsufficientStockError(product.Name)
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}

	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, appErrors.DatabaseError("Failed to add cart item").WithError(err)
	}

	return item, nil
}

// UpdateItemQuantity overwrites a line's quantity after re-validating it
// against the product's current stock.
func (s *cartService) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {

	if quantity <= 0 {
		return appErrors.ValidationError("Quantity must be greater than 0")
	}

	item, err := s.cartRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to load cart item").WithError(err)
	}

	product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to load product").WithError(err)
	}

	if product.Stock < quantity {
		return appErrors.InsufficientStockError(product.Name)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to update cart item").WithError(err)
	}

	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to delete cart item").WithError(err)
	}

	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		return appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return nil
}
