package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"shoplite/internal/models"
	repository "shoplite/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRepoTest(t *testing.T) (repository.CartRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewCartRepo(db), mock
}

func TestGetOrCreateCart(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	userID := uuid.New()
	cartID := uuid.New()
	now := time.Now()

	t.Run("Success - Cart already exists", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
			AddRow(cartID, userID, now, now)

		mock.ExpectQuery(`SELECT (.+) FROM carts`).
			WithArgs(userID).
			WillReturnRows(rows)

		cart, err := repo.GetOrCreateCart(ctx, userID)

		assert.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, cartID, cart.ID)
		assert.Equal(t, userID, cart.UserID)
	})

	t.Run("Success - First access creates the cart", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM carts`).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)

		mock.ExpectQuery(`INSERT INTO carts`).
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(cartID, now, now))

		cart, err := repo.GetOrCreateCart(ctx, userID)

		assert.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, cartID, cart.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAddCartItem(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	cartID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: 2}

	mock.ExpectQuery(`INSERT INTO cart_items`).
		WithArgs(sqlmock.AnyArg(), cartID, productID, 2).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	err := repo.AddItem(ctx, item)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.WithinDuration(t, now, item.CreatedAt, time.Second)
}

func TestListCartItems(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	cartID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	t.Run("Success - Joins the product", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "cart_id", "product_id", "quantity", "created_at",
			"p_id", "p_name", "p_price", "p_stock", "p_img_url",
		}).AddRow(uuid.New(), cartID, productID, 2, now, productID, "Keyboard", 50.0, 10, "")

		mock.ExpectQuery(`SELECT (.+) FROM cart_items`).
			WithArgs(cartID).
			WillReturnRows(rows)

		items, err := repo.ListItems(ctx, cartID)

		assert.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].Product)
		assert.Equal(t, "Keyboard", items[0].Product.Name)
		assert.Equal(t, 10, items[0].Product.Stock)
	})

	t.Run("Success - Deleted product leaves a nil Product", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "cart_id", "product_id", "quantity", "created_at",
			"p_id", "p_name", "p_price", "p_stock", "p_img_url",
		}).AddRow(uuid.New(), cartID, productID, 2, now, nil, nil, nil, nil, nil)

		mock.ExpectQuery(`SELECT (.+) FROM cart_items`).
			WithArgs(cartID).
			WillReturnRows(rows)

		items, err := repo.ListItems(ctx, cartID)

		assert.NoError(t, err)
		require.Len(t, items, 1)
		assert.Nil(t, items[0].Product)
	})
}

func TestUpdateCartItemQuantity(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE cart_items SET quantity`).
			WithArgs(5, itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateItemQuantity(ctx, itemID, 5)

		assert.NoError(t, err)
	})

	t.Run("Failure - Unknown item surfaces sql.ErrNoRows", func(t *testing.T) {
		mock.ExpectExec(`UPDATE cart_items SET quantity`).
			WithArgs(5, itemID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateItemQuantity(ctx, itemID, 5)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDeleteCartItem(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM cart_items`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteItem(ctx, itemID)

		assert.NoError(t, err)
	})

	t.Run("Failure - Unknown item surfaces sql.ErrNoRows", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM cart_items`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteItem(ctx, itemID)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestClearCart(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	cartID := uuid.New()

	// Clearing an already-empty cart is not an error
	mock.ExpectExec(`DELETE FROM cart_items`).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClearCart(ctx, cartID)

	assert.NoError(t, err)
}
