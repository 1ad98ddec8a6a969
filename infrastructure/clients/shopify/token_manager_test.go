package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendor-portal/domain/model"
)

type stubCredentialStore struct {
	cred      *model.StorefrontCredential
	upserted  []*model.StorefrontCredential
	upsertErr error
}

func (s *stubCredentialStore) GetCredential(_ context.Context, _ string) (*model.StorefrontCredential, error) {
	return s.cred, nil
}

func (s *stubCredentialStore) UpsertCredential(_ context.Context, cred *model.StorefrontCredential) error {
	s.upserted = append(s.upserted, cred)
	return s.upsertErr
}

func newPlatformStub(t *testing.T, probeStatus int, exchangeToken string, exchangeStatus int) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var probes, exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-10/shop.json":
			atomic.AddInt32(&probes, 1)
			w.WriteHeader(probeStatus)
		case "/admin/oauth/access_token":
			atomic.AddInt32(&exchanges, 1)
			if exchangeStatus != http.StatusOK {
				w.WriteHeader(exchangeStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": exchangeToken,
				"token_type":   "Bearer",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &probes, &exchanges
}

func testConfig(baseURL string) Config {
	return Config{
		ShopDomain:   "example.myshopify.com",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIVersion:   "2024-10",
		BaseURL:      baseURL,
	}
}

func TestTokenReturnsCachedCredentialWhenProbePasses(t *testing.T) {
	srv, probes, exchanges := newPlatformStub(t, http.StatusOK, "unused", http.StatusOK)
	store := &stubCredentialStore{cred: &model.StorefrontCredential{
		StorefrontID: "storefront-1",
		AccessToken:  "cached-token",
	}}

	m := NewTokenManager(testConfig(srv.URL), store)
	token, err := m.Token(context.Background(), "storefront-1")

	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(probes))
	assert.Equal(t, int32(0), atomic.LoadInt32(exchanges), "valid cached credential must not be re-exchanged")
}

func TestTokenExchangesWhenProbeFails(t *testing.T) {
	srv, _, exchanges := newPlatformStub(t, http.StatusUnauthorized, "fresh-token", http.StatusOK)
	store := &stubCredentialStore{cred: &model.StorefrontCredential{
		StorefrontID: "storefront-1",
		AccessToken:  "stale-token",
	}}

	m := NewTokenManager(testConfig(srv.URL), store)
	token, err := m.Token(context.Background(), "storefront-1")

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(exchanges))
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "fresh-token", store.upserted[0].AccessToken)
}

func TestTokenExchangesWhenNoCredentialStored(t *testing.T) {
	srv, probes, _ := newPlatformStub(t, http.StatusOK, "first-token", http.StatusOK)
	store := &stubCredentialStore{}

	m := NewTokenManager(testConfig(srv.URL), store)
	token, err := m.Token(context.Background(), "storefront-1")

	require.NoError(t, err)
	assert.Equal(t, "first-token", token)
	assert.Equal(t, int32(0), atomic.LoadInt32(probes), "nothing to probe without a stored credential")
}

func TestTokenExchangesWhenProbeTimesOut(t *testing.T) {
	var exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-10/shop.json":
			time.Sleep(500 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		case "/admin/oauth/access_token":
			atomic.AddInt32(&exchanges, 1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "fresh-token",
				"token_type":   "Bearer",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	store := &stubCredentialStore{cred: &model.StorefrontCredential{
		StorefrontID: "storefront-1",
		AccessToken:  "stale-token",
	}}
	m := &TokenManager{
		cfg:         testConfig(srv.URL),
		store:       store,
		probeClient: &http.Client{Timeout: 50 * time.Millisecond},
		cached:      make(map[string]*model.StorefrontCredential),
	}

	token, err := m.Token(context.Background(), "storefront-1")

	require.NoError(t, err, "a probe timeout must fall through to exchange")
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&exchanges))
}

func TestTokenReturnsCredentialErrorWhenExchangeFails(t *testing.T) {
	srv, _, _ := newPlatformStub(t, http.StatusUnauthorized, "", http.StatusBadRequest)
	store := &stubCredentialStore{cred: &model.StorefrontCredential{
		StorefrontID: "storefront-1",
		AccessToken:  "stale-token",
	}}

	m := NewTokenManager(testConfig(srv.URL), store)
	_, err := m.Token(context.Background(), "storefront-1")

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "storefront-1", credErr.StorefrontID)
}

func TestRefreshSurvivesPersistFailure(t *testing.T) {
	srv, _, _ := newPlatformStub(t, http.StatusOK, "fresh-token", http.StatusOK)
	store := &stubCredentialStore{upsertErr: assert.AnError}

	m := NewTokenManager(testConfig(srv.URL), store)
	token, err := m.Refresh(context.Background(), "storefront-1")

	require.NoError(t, err, "a failed persist must not fail the refresh")
	assert.Equal(t, "fresh-token", token)
}

func TestRefreshUpdatesMemoryCache(t *testing.T) {
	srv, probes, exchanges := newPlatformStub(t, http.StatusOK, "fresh-token", http.StatusOK)
	store := &stubCredentialStore{}

	m := NewTokenManager(testConfig(srv.URL), store)
	_, err := m.Refresh(context.Background(), "storefront-1")
	require.NoError(t, err)

	token, err := m.Token(context.Background(), "storefront-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(probes))
	assert.Equal(t, int32(1), atomic.LoadInt32(exchanges))
}
