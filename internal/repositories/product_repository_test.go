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

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewProductRepo(db), mock
}

func TestCreateProduct(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	now := time.Now()
	product := &models.Product{Name: "Keyboard", Price: 50.0, Stock: 10}

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs(sqlmock.AnyArg(), "Keyboard", 50.0, 10, "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := repo.CreateProduct(ctx, product)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
}

func TestGetProductByID(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	productID := uuid.New()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "price", "stock", "img_url", "created_at", "updated_at"}).
			AddRow(productID, "Keyboard", 50.0, 10, "", now, now)

		mock.ExpectQuery(`SELECT (.+) FROM products`).
			WithArgs(productID).
			WillReturnRows(rows)

		product, err := repo.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Keyboard", product.Name)
		assert.Equal(t, 10, product.Stock)
	})

	t.Run("Failure - Not found surfaces sql.ErrNoRows", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM products`).
			WithArgs(productID).
			WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByID(ctx, productID)

		assert.Nil(t, product)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDeleteProduct(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM products`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteProduct(ctx, productID)

		assert.NoError(t, err)
	})

	t.Run("Failure - Unknown product surfaces sql.ErrNoRows", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM products`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteProduct(ctx, productID)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestSearchProducts(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "price", "stock", "img_url", "created_at", "updated_at"}).
		AddRow(uuid.New(), "Mechanical Keyboard", 89.99, 20, "", now, now).
		AddRow(uuid.New(), "Keyboard Cover", 9.99, 50, "", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM products`).
		WithArgs("keyboard").
		WillReturnRows(rows)

	products, err := repo.SearchProducts(ctx, "keyboard")

	assert.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestExistsByID(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	productID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByID(ctx, productID)

	assert.NoError(t, err)
	assert.True(t, exists)
}
