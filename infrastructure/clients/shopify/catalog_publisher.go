package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"vendor-portal/domain/model"
	"vendor-portal/infrastructure/logger"
)

type catalogImage struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

type catalogVariant struct {
	Price             string  `json:"price"`
	CompareAtPrice    *string `json:"compare_at_price,omitempty"`
	SKU               string  `json:"sku,omitempty"`
	Barcode           string  `json:"barcode,omitempty"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Weight            float64 `json:"weight,omitempty"`
	WeightUnit        string  `json:"weight_unit,omitempty"`
}

type catalogProduct struct {
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Status      string           `json:"status"`
	Variants    []catalogVariant `json:"variants"`
	Images      []catalogImage   `json:"images,omitempty"`
}

// CatalogPublisher creates the catalog entry for an approved product. Only
// images the platform confirmed during upload are attached; the publish
// result carries the confirmed URLs back to the caller for persistence.
type CatalogPublisher struct {
	exec Caller
}

func NewCatalogPublisher(exec Caller) *CatalogPublisher {
	return &CatalogPublisher{exec: exec}
}

func (p *CatalogPublisher) Publish(ctx context.Context, storefrontID string, product *model.Product, outcomes []model.UploadOutcome) model.PublishResult {
	payload := buildCatalogPayload(product, outcomes)
	body, err := json.Marshal(map[string]catalogProduct{"product": payload})
	if err != nil {
		return model.PublishResult{Err: err}
	}

	status, respBody, err := p.exec.Do(ctx, storefrontID, Request{
		Method:      http.MethodPost,
		Path:        "products.json",
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return model.PublishResult{Err: err}
	}
	if status < 200 || status >= 300 {
		return model.PublishResult{Err: &CatalogError{Status: status, Body: truncateBody(respBody)}}
	}

	var resp struct {
		Product struct {
			ID       int64 `json:"id"`
			Variants []struct {
				ID int64 `json:"id"`
			} `json:"variants"`
			Images []struct {
				Src string `json:"src"`
			} `json:"images"`
		} `json:"product"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return model.PublishResult{Err: fmt.Errorf("failed to parse catalog response: %w", err)}
	}

	result := model.PublishResult{
		Success:           true,
		PlatformProductID: fmt.Sprintf("%d", resp.Product.ID),
	}
	if len(resp.Product.Variants) > 0 {
		result.PlatformVariantID = fmt.Sprintf("%d", resp.Product.Variants[0].ID)
	}
	if len(resp.Product.Images) > 0 {
		for _, img := range resp.Product.Images {
			result.ConfirmedImageURLs = append(result.ConfirmedImageURLs, img.Src)
		}
	} else {
		for _, o := range outcomes {
			if o.State == model.OutcomeUploaded {
				result.ConfirmedImageURLs = append(result.ConfirmedImageURLs, o.ResourceURL)
			}
		}
	}

	logger.GetLogger().WithField("product_id", product.ID).
		WithField("platform_product_id", result.PlatformProductID).
		Info("catalog entry created")
	return result
}

func buildCatalogPayload(product *model.Product, outcomes []model.UploadOutcome) catalogProduct {
	variant := catalogVariant{
		Price:             product.Price,
		CompareAtPrice:    product.CompareAtPrice,
		SKU:               product.SKU,
		Barcode:           product.Barcode,
		InventoryQuantity: product.InventoryQuantity,
		WeightUnit:        product.WeightUnit,
	}
	if product.Weight != nil {
		variant.Weight = *product.Weight
	}

	payload := catalogProduct{
		Title:       product.Title,
		BodyHTML:    product.Description,
		Vendor:      product.VendorDisplayName,
		ProductType: product.Category,
		Tags:        strings.Join(product.Tags, ", "),
		Status:      "active",
		Variants:    []catalogVariant{variant},
	}
	position := 1
	for _, o := range outcomes {
		if o.State != model.OutcomeUploaded {
			continue
		}
		payload.Images = append(payload.Images, catalogImage{Src: o.ResourceURL, Position: position})
		position++
	}
	return payload
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
