package repository

import (
	"context"

	"vendor-portal/domain/model"
)

type IProduct interface {
	Create(ctx context.Context, product *model.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	ListByVendor(ctx context.Context, vendorID string, limit, offset int) ([]*model.Product, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*model.Product, error)
	// ListPublishFailed returns approved products whose last publish attempt
	// failed, oldest first, for the background retry sweep.
	ListPublishFailed(ctx context.Context, limit int) ([]*model.Product, error)
	UpdateStatus(ctx context.Context, id int64, status string, publishState, note *string) error
	// UpdateImages replaces the persisted image list wholesale. Callers must
	// only pass platform-confirmed URLs.
	UpdateImages(ctx context.Context, id int64, imageURLs []string) error
	SetPlatformIDs(ctx context.Context, id int64, platformProductID, platformVariantID string) error
}
