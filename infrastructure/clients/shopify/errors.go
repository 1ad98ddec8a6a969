package shopify

import "fmt"

// CredentialError means no usable credential could be produced: the cached
// credential (if any) failed its probe and a fresh exchange failed too.
// Nothing downstream can proceed without a credential.
type CredentialError struct {
	StorefrontID string
	Err          error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("acquire credential for storefront %s: %v", e.StorefrontID, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// AuthorizationError is terminal: the platform rejected the request twice,
// once with the cached credential and once with a freshly exchanged one.
type AuthorizationError struct {
	Status int
	Body   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("platform rejected authorization (status %d): %s", e.Status, e.Body)
}

// InvalidSourceError marks a candidate image URL that cannot be fetched from
// the server side (loopback, private address, unsupported scheme). It is
// non-fatal for the batch; the image resolves to a skipped outcome.
type InvalidSourceError struct {
	SourceURL string
	Reason    string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid image source %s: %s", e.SourceURL, e.Reason)
}

// StagingError means the platform refused to issue a staging target.
type StagingError struct {
	SourceURL string
	Err       error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging request for %s failed: %v", e.SourceURL, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// TransferError means the binary transfer to the staging target failed; the
// staging response alone never counts as success.
type TransferError struct {
	SourceURL string
	Status    int
	Err       error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer of %s failed: %v", e.SourceURL, e.Err)
	}
	return fmt.Sprintf("transfer of %s failed with status %d", e.SourceURL, e.Status)
}

func (e *TransferError) Unwrap() error { return e.Err }

// CatalogError is a failed catalog-create call. Prior persisted state is not
// affected; the caller records the platform's error text verbatim.
type CatalogError struct {
	Status int
	Body   string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog create failed (status %d): %s", e.Status, e.Body)
}
