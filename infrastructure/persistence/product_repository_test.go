package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"vendor-portal/domain/model"
)

func productRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "vendor_id", "title", "description", "price", "compare_at_price",
		"sku", "barcode", "inventory_quantity", "category", "tags",
		"weight", "weight_unit", "vendor_display_name", "status",
		"publish_state", "publish_note", "platform_product_id", "platform_variant_id",
		"image_urls", "created_at", "updated_at",
	}).AddRow(
		42, "vendor-7", "Canvas Tote", "Heavy duty tote.", "19.99", nil,
		"TOTE-001", "", 25, "Bags", "{canvas,tote}",
		nil, "", "Acme Goods", model.StatusPending,
		nil, nil, nil, nil,
		"{https://pics.example.com/a.jpg}", now, now,
	)
}

func TestProductRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + productColumns + ` FROM products WHERE id=$1`)).
		WithArgs(int64(42)).
		WillReturnRows(productRows(now))

	product, err := repository.GetByID(context.Background(), 42)

	require.NoError(t, err)
	require.NotNil(t, product)
	require.Equal(t, int64(42), product.ID)
	require.Equal(t, "Canvas Tote", product.Title)
	require.Equal(t, []string{"canvas", "tote"}, product.Tags)
	require.Equal(t, []string{"https://pics.example.com/a.jpg"}, product.ImageURLs)
	require.Nil(t, product.PublishState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + productColumns + ` FROM products WHERE id=$1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repository.GetByID(context.Background(), 99)

	require.NoError(t, err)
	require.Nil(t, product, "a missing product is not an error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))

	product := &model.Product{
		VendorID:  "vendor-7",
		Title:     "Canvas Tote",
		Price:     "19.99",
		Tags:      []string{"canvas"},
		ImageURLs: []string{"https://pics.example.com/a.jpg"},
	}
	id, err := repository.Create(context.Background(), product)

	require.NoError(t, err)
	require.Equal(t, int64(43), id)
	require.Equal(t, int64(43), product.ID)
	require.Equal(t, model.StatusPending, product.Status, "new submissions default to pending review")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)

	state := model.PublishStateFailed
	note := "catalog create failed (status 422)"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET status=$2, publish_state=$3, publish_note=$4, updated_at=$5 WHERE id=$1`)).
		WithArgs(int64(42), model.StatusApproved, &state, &note, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repository.UpdateStatus(context.Background(), 42, model.StatusApproved, &state, &note)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateImages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET image_urls=$2, updated_at=$3 WHERE id=$1`)).
		WithArgs(int64(42), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repository.UpdateImages(context.Background(), 42, []string{"https://cdn.shopify.com/s/files/1/a.jpg"})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListPublishFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewProductRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + productColumns + ` FROM products WHERE status=$1 AND publish_state=$2 ORDER BY updated_at ASC LIMIT $3`)).
		WithArgs(model.StatusApproved, model.PublishStateFailed, 10).
		WillReturnRows(productRows(now))

	products, err := repository.ListPublishFailed(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
