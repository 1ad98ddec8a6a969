package model

import "time"

// PublishResult is the only value the moderation flow may consult when
// deciding what to persist after a publish attempt. Candidate image URLs are
// discarded once this exists; ConfirmedImageURLs carries platform-confirmed
// URLs only.
type PublishResult struct {
	Success            bool     `json:"success"`
	PlatformProductID  string   `json:"platform_product_id,omitempty"`
	PlatformVariantID  string   `json:"platform_variant_id,omitempty"`
	ConfirmedImageURLs []string `json:"confirmed_image_urls"`
	Err                error    `json:"-"`
}

// ErrorMessage returns the underlying platform error text, empty on success.
func (r PublishResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// PublishAudit is an append-only record of one publish attempt.
type PublishAudit struct {
	ProductID    int64     `json:"product_id" bson:"product_id"`
	StorefrontID string    `json:"storefront_id" bson:"storefront_id"`
	Success      bool      `json:"success" bson:"success"`
	ErrorMessage *string   `json:"error_message,omitempty" bson:"error_message,omitempty"`
	UploadedCount int      `json:"uploaded_count" bson:"uploaded_count"`
	SkippedCount  int      `json:"skipped_count" bson:"skipped_count"`
	FailedCount   int      `json:"failed_count" bson:"failed_count"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
