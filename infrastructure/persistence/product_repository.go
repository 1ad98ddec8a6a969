package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"vendor-portal/domain/model"
)

const productColumns = `id, vendor_id, title, description, price, compare_at_price, sku, barcode, inventory_quantity, category, tags, weight, weight_unit, vendor_display_name, status, publish_state, publish_note, platform_product_id, platform_variant_id, image_urls, created_at, updated_at`

type ProductRepository struct{ db *sql.DB }

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (int64, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = model.StatusPending
	}
	q := `INSERT INTO products (vendor_id, title, description, price, compare_at_price, sku, barcode, inventory_quantity, category, tags, weight, weight_unit, vendor_display_name, status, image_urls, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		  RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		product.VendorID, product.Title, product.Description, product.Price, product.CompareAtPrice,
		product.SKU, product.Barcode, product.InventoryQuantity, product.Category, pq.Array(product.Tags),
		product.Weight, product.WeightUnit, product.VendorDisplayName, product.Status,
		pq.Array(product.ImageURLs), product.CreatedAt, product.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	product.ID = id
	return id, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT ` + productColumns + ` FROM products WHERE id=$1`, id)
	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return product, err
}

func (r *ProductRepository) ListByVendor(ctx context.Context, vendorID string, limit, offset int) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ` + productColumns + ` FROM products WHERE vendor_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, vendorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ` + productColumns + ` FROM products WHERE status=$1 ORDER BY created_at ASC LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) ListPublishFailed(ctx context.Context, limit int) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ` + productColumns + ` FROM products WHERE status=$1 AND publish_state=$2 ORDER BY updated_at ASC LIMIT $3`,
		model.StatusApproved, model.PublishStateFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) UpdateStatus(ctx context.Context, id int64, status string, publishState, note *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET status=$2, publish_state=$3, publish_note=$4, updated_at=$5 WHERE id=$1`,
		id, status, publishState, note, time.Now().UTC())
	return err
}

func (r *ProductRepository) UpdateImages(ctx context.Context, id int64, imageURLs []string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET image_urls=$2, updated_at=$3 WHERE id=$1`,
		id, pq.Array(imageURLs), time.Now().UTC())
	return err
}

func (r *ProductRepository) SetPlatformIDs(ctx context.Context, id int64, platformProductID, platformVariantID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET platform_product_id=$2, platform_variant_id=$3, updated_at=$4 WHERE id=$1`,
		id, platformProductID, platformVariantID, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	var compareAt, publishState, publishNote, platformProductID, platformVariantID sql.NullString
	var weight sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Title, &p.Description, &p.Price, &compareAt,
		&p.SKU, &p.Barcode, &p.InventoryQuantity, &p.Category, pq.Array(&p.Tags),
		&weight, &p.WeightUnit, &p.VendorDisplayName, &p.Status,
		&publishState, &publishNote, &platformProductID, &platformVariantID,
		pq.Array(&p.ImageURLs), &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if compareAt.Valid {
		v := compareAt.String
		p.CompareAtPrice = &v
	}
	if weight.Valid {
		v := weight.Float64
		p.Weight = &v
	}
	if publishState.Valid {
		v := publishState.String
		p.PublishState = &v
	}
	if publishNote.Valid {
		v := publishNote.String
		p.PublishNote = &v
	}
	if platformProductID.Valid {
		v := platformProductID.String
		p.PlatformProductID = &v
	}
	if platformVariantID.Valid {
		v := platformVariantID.String
		p.PlatformVariantID = &v
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]*model.Product, error) {
	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
