package repository

import (
	"context"

	"vendor-portal/domain/model"
)

// IImageBatchProcessor uploads a batch of candidate images to the platform.
// The returned slice has the same length and order as refs; every element is
// resolved to a tagged outcome and no error escapes.
type IImageBatchProcessor interface {
	Process(ctx context.Context, storefrontID string, refs []model.ImageReference) []model.UploadOutcome
}

// ICatalogPublisher creates the catalog listing from the product record and
// the batch's successful uploads. Failures are reported inside the
// PublishResult, never as a panic or a partial write.
type ICatalogPublisher interface {
	Publish(ctx context.Context, storefrontID string, product *model.Product, outcomes []model.UploadOutcome) model.PublishResult
}

// IPublishAudit is an append-only log of publish attempts.
type IPublishAudit interface {
	Record(ctx context.Context, audit *model.PublishAudit) error
	ListByProduct(ctx context.Context, productID int64, limit int) ([]model.PublishAudit, error)
}
