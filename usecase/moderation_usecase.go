package usecase

import (
	"context"
	"errors"
	"fmt"

	"vendor-portal/domain/dto"
	"vendor-portal/domain/model"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/cache"
	"vendor-portal/infrastructure/logger"
	"vendor-portal/infrastructure/pubsub"
	"vendor-portal/infrastructure/realtime"
	"vendor-portal/infrastructure/servicebus"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrAlreadyModerated = errors.New("product already moderated")
)

type IModerationUsecase interface {
	Approve(ctx context.Context, productID int64, req dto.ModerationRequest) (dto.ModerationResult, error)
	Reject(ctx context.Context, productID int64, req dto.ModerationRequest) (dto.ModerationResult, error)
	PublishStatus(ctx context.Context, productID int64) (dto.ModerationResult, error)
	RetryFailedPublishes(ctx context.Context, batchSize int) int
}

// moderationUsecase drives the approve/reject flow and the platform push that
// follows an approval. Moderation status is persisted before any platform
// call resolves, so a publish failure can never undo an approval.
type moderationUsecase struct {
	productRepo  repository.IProduct
	images       repository.IImageBatchProcessor
	publisher    repository.ICatalogPublisher
	audit        repository.IPublishAudit
	statusCache  *cache.PublishStatusCache
	events       pubsub.IPublishEvents
	busEvents    servicebus.IPublishEvents
	hub          *realtime.Hub
	storefrontID string
}

func NewModerationUsecase(
	productRepo repository.IProduct,
	images repository.IImageBatchProcessor,
	publisher repository.ICatalogPublisher,
	audit repository.IPublishAudit,
	statusCache *cache.PublishStatusCache,
	events pubsub.IPublishEvents,
	busEvents servicebus.IPublishEvents,
	hub *realtime.Hub,
	storefrontID string,
) IModerationUsecase {
	return &moderationUsecase{
		productRepo:  productRepo,
		images:       images,
		publisher:    publisher,
		audit:        audit,
		statusCache:  statusCache,
		events:       events,
		busEvents:    busEvents,
		hub:          hub,
		storefrontID: storefrontID,
	}
}

func (u *moderationUsecase) Approve(ctx context.Context, productID int64, req dto.ModerationRequest) (dto.ModerationResult, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return dto.ModerationResult{}, err
	}
	if product == nil {
		return dto.ModerationResult{}, ErrProductNotFound
	}
	if product.Status == model.StatusRejected {
		return dto.ModerationResult{}, ErrAlreadyModerated
	}

	// Approval is committed before the platform push so a publish failure
	// leaves an approved product, not a stuck pending one.
	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	if err := u.productRepo.UpdateStatus(ctx, productID, model.StatusApproved, nil, note); err != nil {
		return dto.ModerationResult{}, err
	}
	product.Status = model.StatusApproved

	result := u.publish(ctx, product)
	return u.moderationResult(product, result), nil
}

func (u *moderationUsecase) Reject(ctx context.Context, productID int64, req dto.ModerationRequest) (dto.ModerationResult, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return dto.ModerationResult{}, err
	}
	if product == nil {
		return dto.ModerationResult{}, ErrProductNotFound
	}

	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	if err := u.productRepo.UpdateStatus(ctx, productID, model.StatusRejected, nil, note); err != nil {
		return dto.ModerationResult{}, err
	}
	product.Status = model.StatusRejected
	product.PublishState = nil
	product.PublishNote = note
	if u.hub != nil {
		u.hub.BroadcastPublishStatus(product)
	}

	return dto.ModerationResult{
		ProductID: productID,
		Status:    model.StatusRejected,
		ImageURLs: product.ImageURLs,
	}, nil
}

func (u *moderationUsecase) PublishStatus(ctx context.Context, productID int64) (dto.ModerationResult, error) {
	if status, ok := u.statusCache.Get(ctx, productID); ok {
		return dto.ModerationResult{
			ProductID:         productID,
			Status:            model.StatusApproved,
			Published:         status.Success,
			PublishError:      status.Error,
			PlatformProductID: status.PlatformProductID,
		}, nil
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return dto.ModerationResult{}, err
	}
	if product == nil {
		return dto.ModerationResult{}, ErrProductNotFound
	}

	res := dto.ModerationResult{
		ProductID: productID,
		Status:    product.Status,
		ImageURLs: product.ImageURLs,
	}
	if product.PublishState != nil {
		res.Published = *product.PublishState == model.PublishStatePublished
	}
	if product.PublishNote != nil {
		res.PublishError = *product.PublishNote
	}
	if product.PlatformProductID != nil {
		res.PlatformProductID = *product.PlatformProductID
	}
	if product.PlatformVariantID != nil {
		res.PlatformVariantID = *product.PlatformVariantID
	}
	return res, nil
}

// RetryFailedPublishes re-attempts the platform push for approved products
// whose last attempt failed. Returns the number of products now published.
func (u *moderationUsecase) RetryFailedPublishes(ctx context.Context, batchSize int) int {
	products, err := u.productRepo.ListPublishFailed(ctx, batchSize)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing failed publishes")
		return 0
	}
	published := 0
	for _, product := range products {
		result := u.publish(ctx, product)
		if result.Success {
			published++
		}
	}
	if len(products) > 0 {
		logger.GetLogger().
			WithField("attempted", len(products)).
			WithField("published", published).
			Info("Publish retry sweep finished")
	}
	return published
}

// publish runs one complete platform push for an approved product and
// persists the outcome. Candidate image URLs are only replaced when the
// platform confirmed the listing and its hosted URLs.
func (u *moderationUsecase) publish(ctx context.Context, product *model.Product) model.PublishResult {
	outcomes := u.images.Process(ctx, u.storefrontID, product.CandidateImages())
	result := u.publisher.Publish(ctx, u.storefrontID, product, outcomes)

	if result.Success {
		state := model.PublishStatePublished
		if err := u.productRepo.UpdateStatus(ctx, product.ID, model.StatusApproved, &state, nil); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while persisting publish state")
		}
		if err := u.productRepo.SetPlatformIDs(ctx, product.ID, result.PlatformProductID, result.PlatformVariantID); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while persisting platform IDs")
		}
		if len(result.ConfirmedImageURLs) > 0 {
			if err := u.productRepo.UpdateImages(ctx, product.ID, result.ConfirmedImageURLs); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while persisting confirmed images")
			}
			product.ImageURLs = result.ConfirmedImageURLs
		}
		product.PublishState = &state
		product.PublishNote = nil
		product.PlatformProductID = &result.PlatformProductID
		product.PlatformVariantID = &result.PlatformVariantID
	} else {
		state := model.PublishStateFailed
		msg := result.ErrorMessage()
		if err := u.productRepo.UpdateStatus(ctx, product.ID, model.StatusApproved, &state, &msg); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while persisting publish failure")
		}
		product.PublishState = &state
		product.PublishNote = &msg
		logger.GetLogger().
			WithField("product_id", product.ID).
			WithField("error", msg).
			Warn("Platform publish failed; product stays approved")
	}

	u.recordAttempt(ctx, product, result, outcomes)
	return result
}

func (u *moderationUsecase) recordAttempt(ctx context.Context, product *model.Product, result model.PublishResult, outcomes []model.UploadOutcome) {
	uploaded, skipped, failed := 0, 0, 0
	for _, o := range outcomes {
		switch o.State {
		case model.OutcomeUploaded:
			uploaded++
		case model.OutcomeSkipped:
			skipped++
		case model.OutcomeFailed:
			failed++
		}
	}
	audit := &model.PublishAudit{
		ProductID:     product.ID,
		StorefrontID:  u.storefrontID,
		Success:       result.Success,
		UploadedCount: uploaded,
		SkippedCount:  skipped,
		FailedCount:   failed,
	}
	if msg := result.ErrorMessage(); msg != "" {
		audit.ErrorMessage = &msg
	}
	if u.audit != nil {
		if err := u.audit.Record(ctx, audit); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while recording publish audit")
		}
	}

	u.statusCache.Set(ctx, product.ID, result)

	if u.events != nil {
		if err := u.events.ProductPublished(ctx, pubsub.FromResult(product.ID, u.storefrontID, result)); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while emitting publish event")
		}
	}
	if u.busEvents != nil {
		payload := []byte(fmt.Sprintf(`{"product_id":%d,"success":%t}`, product.ID, result.Success))
		if err := u.busEvents.SendMessage(ctx, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while mirroring publish event to service bus")
		}
	}
	if u.hub != nil {
		u.hub.BroadcastPublishStatus(product)
	}
}

func (u *moderationUsecase) moderationResult(product *model.Product, result model.PublishResult) dto.ModerationResult {
	res := dto.ModerationResult{
		ProductID:         product.ID,
		Status:            product.Status,
		Published:         result.Success,
		PublishError:      result.ErrorMessage(),
		PlatformProductID: result.PlatformProductID,
		PlatformVariantID: result.PlatformVariantID,
		ImageURLs:         product.ImageURLs,
	}
	return res
}
