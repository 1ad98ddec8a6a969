package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendor-portal/domain/model"
)

func sampleProduct() *model.Product {
	compareAt := "29.99"
	return &model.Product{
		ID:                42,
		VendorID:          "vendor-7",
		Title:             "Canvas Tote",
		Description:       "<p>Heavy duty tote.</p>",
		Price:             "19.99",
		CompareAtPrice:    &compareAt,
		SKU:               "TOTE-001",
		Barcode:           "0123456789012",
		InventoryQuantity: 25,
		Category:          "Bags",
		Tags:              []string{"canvas", "tote", "eco"},
		VendorDisplayName: "Acme Goods",
	}
}

func TestPublishSendsOnlyUploadedImages(t *testing.T) {
	exec := &stubCaller{
		status: http.StatusCreated,
		body: []byte(`{"product":{"id":1001,"variants":[{"id":2002}],"images":[` +
			`{"src":"https://cdn.shopify.com/s/files/1/a.jpg"},` +
			`{"src":"https://cdn.shopify.com/s/files/1/c.jpg"}]}}`),
	}
	p := NewCatalogPublisher(exec)

	outcomes := []model.UploadOutcome{
		model.UploadedOutcome(model.ImageReference{SourceURL: "https://pics.example.com/a.jpg", Position: 1}, "https://cdn.shopify.com/staged/a.jpg"),
		model.SkippedOutcome(model.ImageReference{SourceURL: "http://localhost/b.jpg", Position: 2}, "loopback host"),
		model.UploadedOutcome(model.ImageReference{SourceURL: "https://pics.example.com/c.jpg", Position: 3}, "https://cdn.shopify.com/staged/c.jpg"),
	}
	result := p.Publish(context.Background(), "storefront-1", sampleProduct(), outcomes)

	require.True(t, result.Success)
	assert.Equal(t, "1001", result.PlatformProductID)
	assert.Equal(t, "2002", result.PlatformVariantID)
	assert.Equal(t, []string{
		"https://cdn.shopify.com/s/files/1/a.jpg",
		"https://cdn.shopify.com/s/files/1/c.jpg",
	}, result.ConfirmedImageURLs, "confirmed URLs come from the platform response")

	var sent struct {
		Product catalogProduct `json:"product"`
	}
	require.NoError(t, json.Unmarshal(exec.last.Body, &sent))
	assert.Equal(t, "Canvas Tote", sent.Product.Title)
	assert.Equal(t, "Acme Goods", sent.Product.Vendor)
	assert.Equal(t, "Bags", sent.Product.ProductType)
	assert.Equal(t, "canvas, tote, eco", sent.Product.Tags)
	require.Len(t, sent.Product.Variants, 1)
	assert.Equal(t, "19.99", sent.Product.Variants[0].Price)
	assert.Equal(t, 25, sent.Product.Variants[0].InventoryQuantity)
	require.Len(t, sent.Product.Images, 2, "skipped images never reach the catalog payload")
	assert.Equal(t, "https://cdn.shopify.com/staged/a.jpg", sent.Product.Images[0].Src)
	assert.Equal(t, 1, sent.Product.Images[0].Position)
	assert.Equal(t, "https://cdn.shopify.com/staged/c.jpg", sent.Product.Images[1].Src)
	assert.Equal(t, 2, sent.Product.Images[1].Position)
	assert.Equal(t, "products.json", exec.last.Path)
}

func TestPublishWithoutImages(t *testing.T) {
	exec := &stubCaller{
		status: http.StatusCreated,
		body:   []byte(`{"product":{"id":1001,"variants":[{"id":2002}],"images":[]}}`),
	}
	p := NewCatalogPublisher(exec)

	result := p.Publish(context.Background(), "storefront-1", sampleProduct(), nil)

	require.True(t, result.Success)
	assert.Empty(t, result.ConfirmedImageURLs)

	var sent struct {
		Product catalogProduct `json:"product"`
	}
	require.NoError(t, json.Unmarshal(exec.last.Body, &sent))
	assert.Empty(t, sent.Product.Images)
}

func TestPublishReturnsCatalogErrorOnRejection(t *testing.T) {
	exec := &stubCaller{
		status: http.StatusUnprocessableEntity,
		body:   []byte(`{"errors":{"title":["can't be blank"]}}`),
	}
	p := NewCatalogPublisher(exec)

	result := p.Publish(context.Background(), "storefront-1", sampleProduct(), nil)

	require.False(t, result.Success)
	var catErr *CatalogError
	require.ErrorAs(t, result.Err, &catErr)
	assert.Equal(t, http.StatusUnprocessableEntity, catErr.Status)
	assert.Contains(t, catErr.Body, "can't be blank")
}

func TestPublishPropagatesExecutorError(t *testing.T) {
	exec := &stubCaller{err: &CredentialError{StorefrontID: "storefront-1", Err: assert.AnError}}
	p := NewCatalogPublisher(exec)

	result := p.Publish(context.Background(), "storefront-1", sampleProduct(), nil)

	require.False(t, result.Success)
	var credErr *CredentialError
	require.ErrorAs(t, result.Err, &credErr)
}
