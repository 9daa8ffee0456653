package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shoplite/internal/models"
	"shoplite/internal/utils"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientStock is returned by MarkPaidAndFulfill when a guarded
	// stock decrement would drive a product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderNotPending is returned by MarkPaidAndFulfill when the order is
	// no longer in the PENDING state by the time the transaction runs.
	ErrOrderNotPending = errors.New("order is not pending")
)

type OrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	MarkPaidAndFulfill(ctx context.Context, orderID, cartID uuid.UUID, items []models.OrderItem) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrderWithItems persists the order and its item snapshot in a single
// transaction so a half-created order is never observable.
func (r *orderRepository) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer tx.Rollback()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	query := `
		INSERT INTO orders (id, user_id, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.ID, order.UserID, order.Status, order.TotalPrice).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}

		items[i].OrderID = order.ID

		_, err := tx.ExecContext(dbCtx, itemQuery, items[i].ID, order.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{}

	query := `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&order.ID, &order.UserID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return order, nil
}

// ListItemsByOrder returns the frozen order lines with the current product
// attached for display.
func (r *orderRepository) ListItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at,
		       p.id, p.name, p.price, p.stock, p.img_url
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at
	`

	rows, err := r.DB.QueryContext(dbCtx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {

		var item models.OrderItem

		var productID, name, imgURL sql.NullString

		var price sql.NullFloat64

		var stock sql.NullInt64

		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.CreatedAt,
			&productID, &name, &price, &stock, &imgURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		if productID.Valid {
			item.Product = &models.Product{
				ID:       item.ProductID,
				Name:     name.String,
				Price:    price.Float64,
				Stock:    int(stock.Int64),
				ImageURL: imgURL.String,
			}
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *orderRepository) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		var order models.Order

		err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus overwrites the order status unconditionally; any status may
// move to any other.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: id, Status: status}

	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING user_id, total_price, created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, status, id).Scan(&order.UserID, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

// MarkPaidAndFulfill runs payment fulfillment as one transaction: for every
// order line a guarded stock decrement that refuses to go negative, then a
// conditional PENDING -> PAID flip, then a wholesale clear of the cart. On
// any failure the whole transaction rolls back and nothing is observable.
func (r *orderRepository) MarkPaidAndFulfill(ctx context.Context, orderID, cartID uuid.UUID, items []models.OrderItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer tx.Rollback()

	decrement := `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	for _, item := range items {

		result, err := tx.ExecContext(dbCtx, decrement, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		updated, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		if updated == 0 {
			return fmt.Errorf("product %s: %w", item.ProductID, ErrInsufficientStock)
		}
	}

	result, err := tx.ExecContext(dbCtx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.OrderStatusPaid, orderID, models.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if updated == 0 {
		return ErrOrderNotPending
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
