package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "shoplite/internal/errors"
	"shoplite/internal/metrics"
	"shoplite/internal/models"
	repository "shoplite/internal/repositories"

	"github.com/google/uuid"
)

type OrderService interface {
	CreatePendingOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	PayOrder(ctx context.Context, orderID, userID uuid.UUID) error
	GetOrderByID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) OrderService {
	return &orderService{orderRepo: orderRepo, cartRepo: cartRepo, productRepo: productRepo, userRepo: userRepo}
}

// CreatePendingOrder snapshots the user's cart into a PENDING order. Stock
// is validated against every line but not reserved; the decrement happens at
// payment time. The returned order carries no items, matching the listing
// contract.
func (s *orderService) CreatePendingOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart items").WithError(err)
	}

	if len(items) == 0 {
		return nil, appErrors.EmptyCartError()
	}

	// Validate stock and compute the total from current prices.
	var total float64

	orderItems := make([]models.OrderItem, 0, len(items))

	for _, item := range items {

		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.NotFoundError("Product not found").WithError(err)
			}

			return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
		}

		if product.Stock < item.Quantity {
			metrics.StockRejected()

			return nil, appErrors.InsufficientStockError(product.Name)
		}

		total += product.Price * float64(item.Quantity)

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     models.OrderStatusPending,
		TotalPrice: total,
	}

	if err := s.orderRepo.CreateOrderWithItems(ctx, order, orderItems); err != nil {
		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.OrderCreated(order.TotalPrice)

	return order, nil
}

// PayOrder marks a pending order as paid, decrements stock for every line
// and clears the user's cart, all atomically. Stock is re-validated here
// because it may have moved since order creation; the repository's guarded
// decrement is the final authority under concurrency.
func (s *orderService) PayOrder(ctx context.Context, orderID, userID uuid.UUID) error {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Order not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to load order").WithError(err)
	}

	if order.UserID != userID {
		return appErrors.ForbiddenError("You don't have permission to access this order")
	}

	if order.Status != models.OrderStatusPending {
		return appErrors.InvalidOrderStateError("Order is not awaiting payment")
	}

	items, err := s.orderRepo.ListItemsByOrder(ctx, orderID)
	if err != nil {
		return appErrors.DatabaseError("Failed to load order items").WithError(err)
	}

	for _, item := range items {

		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Product not found").WithError(err)
			}

			return appErrors.DatabaseError("Failed to load product").WithError(err)
		}

		if product.Stock < item.Quantity {
			metrics.StockRejected()

			return appErrors.InsufficientStockError(product.Name)
		}
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	if err := s.orderRepo.MarkPaidAndFulfill(ctx, orderID, cart.ID, items); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			metrics.StockRejected()

			return appErrors.InsufficientStockError(err.Error()).WithError(err)
		case errors.Is(err, repository.ErrOrderNotPending):
			return appErrors.InvalidOrderStateError("Order is not awaiting payment").WithError(err)
		default:
			return appErrors.DatabaseError("Failed to fulfill order").WithError(err)
		}
	}

	metrics.OrderPaid()

	return nil
}

// GetOrderByID returns the order with its items; users may only view their
// own orders.
func (s *orderService) GetOrderByID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load order").WithError(err)
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You don't have permission to access this order")
	}

	items, err := s.orderRepo.ListItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load order items").WithError(err)
	}

	order.Items = items

	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

// ListAllOrders is the admin view: every order with its user attached but
// no items.
func (s *orderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	for i := range orders {
		user, err := s.userRepo.GetUserByID(ctx, orders[i].UserID)
		if err == nil {
			orders[i].User = user
		}
	}

	return orders, nil
}

// UpdateStatus overwrites the order status unconditionally. Any status may
// move to any other; no transition graph is enforced.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	order, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return order, nil
}
