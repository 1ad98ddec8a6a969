package model

import "time"

// StorefrontCredential stores the access token for one storefront. One active
// row per storefront; refresh replaces the row wholesale.
type StorefrontCredential struct {
	ID           int64      `json:"id"`
	StorefrontID string     `json:"storefront_id"`
	AccessToken  string     `json:"access_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
