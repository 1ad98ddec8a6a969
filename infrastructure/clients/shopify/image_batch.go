package shopify

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"vendor-portal/domain/model"
	"vendor-portal/infrastructure/logger"
)

// uploader is satisfied by StagedUploadClient.
type uploader interface {
	Upload(ctx context.Context, storefrontID, sourceURL string) (string, error)
}

// ImageBatchProcessor resolves a product's candidate images one at a time,
// producing an outcome per candidate in the original order. Uploads are
// sequential and rate limited; a failing candidate never aborts the batch.
type ImageBatchProcessor struct {
	client  uploader
	limiter *rate.Limiter
}

func NewImageBatchProcessor(client uploader, ratePerMinute int) *ImageBatchProcessor {
	if ratePerMinute <= 0 {
		ratePerMinute = 40
	}
	return &ImageBatchProcessor{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), 1),
	}
}

func (p *ImageBatchProcessor) Process(ctx context.Context, storefrontID string, refs []model.ImageReference) []model.UploadOutcome {
	outcomes := make([]model.UploadOutcome, 0, len(refs))
	for _, ref := range refs {
		if err := p.limiter.Wait(ctx); err != nil {
			outcomes = append(outcomes, model.FailedOutcome(ref, err))
			continue
		}
		resourceURL, err := p.client.Upload(ctx, storefrontID, ref.SourceURL)
		if err != nil {
			var invalid *InvalidSourceError
			if errors.As(err, &invalid) {
				logger.GetLogger().WithField("source_url", ref.SourceURL).
					WithField("reason", invalid.Reason).
					Info("skipping image with unusable source")
				outcomes = append(outcomes, model.SkippedOutcome(ref, invalid.Reason))
				continue
			}
			logger.GetLogger().WithField("source_url", ref.SourceURL).
				WithError(err).
				Warning("image upload failed")
			outcomes = append(outcomes, model.FailedOutcome(ref, err))
			continue
		}
		outcomes = append(outcomes, model.UploadedOutcome(ref, resourceURL))
	}
	return outcomes
}
