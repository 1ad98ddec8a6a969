package usecase

import (
	"context"

	"vendor-portal/domain/dto"
	"vendor-portal/domain/model"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/logger"
)

type IProductUsecase interface {
	Submit(ctx context.Context, vendorID string, req dto.ProductCreateRequest) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	ListMine(ctx context.Context, vendorID string, limit, offset int) ([]*model.Product, error)
	ListPending(ctx context.Context, limit int) ([]*model.Product, error)
}

type productUsecase struct {
	productRepo repository.IProduct
}

func NewProductUsecase(productRepo repository.IProduct) IProductUsecase {
	return &productUsecase{productRepo: productRepo}
}

// Submit records a vendor submission as pending review. Image URLs are stored
// as given; they stay candidates until a publish confirms them.
func (u *productUsecase) Submit(ctx context.Context, vendorID string, req dto.ProductCreateRequest) (*model.Product, error) {
	product := &model.Product{
		VendorID:          vendorID,
		Title:             req.Title,
		Description:       req.Description,
		Price:             req.Price,
		CompareAtPrice:    req.CompareAtPrice,
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		InventoryQuantity: req.InventoryQuantity,
		Category:          req.Category,
		Tags:              req.Tags,
		Weight:            req.Weight,
		WeightUnit:        req.WeightUnit,
		VendorDisplayName: req.VendorDisplayName,
		Status:            model.StatusPending,
		ImageURLs:         req.ImageURLs,
	}
	if _, err := u.productRepo.Create(ctx, product); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating product")
		return nil, err
	}
	return product, nil
}

func (u *productUsecase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.productRepo.GetByID(ctx, id)
}

func (u *productUsecase) ListMine(ctx context.Context, vendorID string, limit, offset int) ([]*model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.productRepo.ListByVendor(ctx, vendorID, limit, offset)
}

func (u *productUsecase) ListPending(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return u.productRepo.ListByStatus(ctx, model.StatusPending, limit)
}
