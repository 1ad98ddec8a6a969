package repository

import (
	"context"

	"vendor-portal/domain/model"
)

// ICredentialStore persists one access credential per storefront. Pure data
// access; no network calls.
type ICredentialStore interface {
	GetCredential(ctx context.Context, storefrontID string) (*model.StorefrontCredential, error)
	// UpsertCredential replaces any prior credential for the storefront.
	UpsertCredential(ctx context.Context, cred *model.StorefrontCredential) error
}
