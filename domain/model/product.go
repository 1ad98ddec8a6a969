package model

import "time"

// Moderation statuses. Rejection is terminal; approval is annotated with a
// publish sub-state rather than a separate top-level status.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	PublishStatePublished = "published"
	PublishStateFailed    = "publish_failed"
)

// Product is a vendor-submitted product row. ImageURLs holds the candidate
// image URLs supplied by the vendor until a successful publish replaces them
// with the platform-confirmed ones.
type Product struct {
	ID                int64     `json:"id"`
	VendorID          string    `json:"vendor_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Price             string    `json:"price"`
	CompareAtPrice    *string   `json:"compare_at_price,omitempty"`
	SKU               string    `json:"sku"`
	Barcode           string    `json:"barcode"`
	InventoryQuantity int       `json:"inventory_quantity"`
	Category          string    `json:"category"`
	Tags              []string  `json:"tags"`
	Weight            *float64  `json:"weight,omitempty"`
	WeightUnit        string    `json:"weight_unit"`
	VendorDisplayName string    `json:"vendor_display_name"`
	Status            string    `json:"status"`
	PublishState      *string   `json:"publish_state,omitempty"`
	PublishNote       *string   `json:"publish_note,omitempty"`
	PlatformProductID *string   `json:"platform_product_id,omitempty"`
	PlatformVariantID *string   `json:"platform_variant_id,omitempty"`
	ImageURLs         []string  `json:"image_urls"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CandidateImages returns the product's current image list as ordered
// references for a publish attempt.
func (p *Product) CandidateImages() []ImageReference {
	refs := make([]ImageReference, 0, len(p.ImageURLs))
	for i, u := range p.ImageURLs {
		refs = append(refs, ImageReference{SourceURL: u, Position: i})
	}
	return refs
}
