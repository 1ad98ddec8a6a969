package dto

// ProductCreateRequest is a vendor's product submission.
type ProductCreateRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description"`
	Price             string   `json:"price" binding:"required"`
	CompareAtPrice    *string  `json:"compare_at_price"`
	SKU               string   `json:"sku"`
	Barcode           string   `json:"barcode"`
	InventoryQuantity int      `json:"inventory_quantity"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags"`
	Weight            *float64 `json:"weight"`
	WeightUnit        string   `json:"weight_unit"`
	VendorDisplayName string   `json:"vendor_display_name"`
	ImageURLs         []string `json:"image_urls"`
}

// ModerationRequest carries the operator's note for an approve or reject action.
type ModerationRequest struct {
	Note string `json:"note"`
}

// ModerationResult is what the administrator sees after an approve/reject.
// Status always reflects the persisted moderation status; Published and
// PublishError describe the platform push, which may fail independently.
type ModerationResult struct {
	ProductID         int64    `json:"product_id"`
	Status            string   `json:"status"`
	Published         bool     `json:"published"`
	PublishError      string   `json:"publish_error,omitempty"`
	PlatformProductID string   `json:"platform_product_id,omitempty"`
	PlatformVariantID string   `json:"platform_variant_id,omitempty"`
	ImageURLs         []string `json:"image_urls"`
}
