package shopify

import (
	"fmt"
	"strings"
)

// Config describes the storefront this deployment publishes to and the app
// client identity used for token exchange.
type Config struct {
	ShopDomain   string
	ClientID     string
	ClientSecret string
	APIVersion   string
	// BaseURL overrides https://{ShopDomain} when set (tests).
	BaseURL string
	// ResourceHosts are hosts treated as platform-hosted. Candidate images
	// already on one of these hosts pass through without re-uploading.
	ResourceHosts []string
}

func (c Config) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s", c.ShopDomain)
}

func (c Config) apiURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.base(), c.APIVersion, path)
}

func (c Config) tokenURL() string {
	return fmt.Sprintf("%s/admin/oauth/access_token", c.base())
}

func (c Config) resourceHosts() []string {
	if len(c.ResourceHosts) > 0 {
		return c.ResourceHosts
	}
	return []string{"cdn.shopify.com"}
}
