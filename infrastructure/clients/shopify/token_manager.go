package shopify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"vendor-portal/domain/model"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// Probe and exchange carry independent timeouts; a slow probe must not block
// refresh, so a timed-out probe counts as a probe failure and triggers the
// exchange path.
const (
	probeTimeout    = 5 * time.Second
	exchangeTimeout = 15 * time.Second
)

// TokenManager owns acquisition, validity probing and refresh of the
// storefront access credential. It is the only component that talks to the
// platform's authorization endpoints. Other components receive the bare
// secret value, never the credential record.
type TokenManager struct {
	cfg         Config
	store       repository.ICredentialStore
	probeClient *http.Client

	group  singleflight.Group
	mu     sync.Mutex
	cached map[string]*model.StorefrontCredential
}

func NewTokenManager(cfg Config, store repository.ICredentialStore) *TokenManager {
	return &TokenManager{
		cfg:         cfg,
		store:       store,
		probeClient: &http.Client{Timeout: probeTimeout},
		cached:      make(map[string]*model.StorefrontCredential),
	}
}

// Token returns a valid secret for the storefront. A cached credential that
// passes the probe is returned unchanged; cached credentials are never
// refreshed speculatively. Only when both the cache path and a fresh exchange
// fail does this return a CredentialError.
func (m *TokenManager) Token(ctx context.Context, storefrontID string) (string, error) {
	if cred := m.lookup(ctx, storefrontID); cred != nil {
		if err := m.probe(ctx, cred.AccessToken); err == nil {
			return cred.AccessToken, nil
		} else {
			logger.GetLogger().
				WithField("storefront_id", storefrontID).
				WithField("error", err.Error()).
				Info("Cached credential failed probe, exchanging")
		}
	}
	return m.Refresh(ctx, storefrontID)
}

// Refresh forces a credential exchange, bypassing the cache, and persists the
// replacement. Concurrent refreshes for one storefront collapse into a single
// exchange call.
func (m *TokenManager) Refresh(ctx context.Context, storefrontID string) (string, error) {
	v, err, _ := m.group.Do(storefrontID, func() (interface{}, error) {
		tok, err := m.exchange(ctx)
		if err != nil {
			return nil, &CredentialError{StorefrontID: storefrontID, Err: err}
		}
		cred := &model.StorefrontCredential{
			StorefrontID: storefrontID,
			AccessToken:  tok.AccessToken,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if !tok.Expiry.IsZero() {
			expiry := tok.Expiry.UTC()
			cred.ExpiresAt = &expiry
		}
		if m.store != nil {
			if err := m.store.UpsertCredential(ctx, cred); err != nil {
				// The exchanged credential is still valid for this attempt.
				logger.GetLogger().
					WithField("storefront_id", storefrontID).
					WithField("error", err.Error()).
					Warn("Failed to persist exchanged credential")
			}
		}
		m.mu.Lock()
		m.cached[storefrontID] = cred
		m.mu.Unlock()
		return cred.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *TokenManager) lookup(ctx context.Context, storefrontID string) *model.StorefrontCredential {
	m.mu.Lock()
	cred := m.cached[storefrontID]
	m.mu.Unlock()
	if cred != nil {
		return cred
	}
	if m.store == nil {
		return nil
	}
	cred, err := m.store.GetCredential(ctx, storefrontID)
	if err != nil || cred == nil || cred.AccessToken == "" {
		return nil
	}
	m.mu.Lock()
	m.cached[storefrontID] = cred
	m.mu.Unlock()
	return cred
}

// probe performs a cheap authenticated read. Any non-2xx response or
// transport error (including timeout) counts as a failed probe.
func (m *TokenManager) probe(ctx context.Context, token string) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, m.cfg.apiURL("shop.json"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	resp, err := m.probeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

func (m *TokenManager) exchange(ctx context.Context) (*oauth2.Token, error) {
	cc := &clientcredentials.Config{
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		TokenURL:     m.cfg.tokenURL(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	exCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	exCtx = context.WithValue(exCtx, oauth2.HTTPClient, &http.Client{Timeout: exchangeTimeout})
	return cc.Token(exCtx)
}
