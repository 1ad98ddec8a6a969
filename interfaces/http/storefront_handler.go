package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"

	"vendor-portal/domain/model"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/configuration"
	"vendor-portal/infrastructure/logger"
)

type IStorefrontHandler interface {
	GetAuthURL(ctx *gin.Context)
	Callback(ctx *gin.Context)
	Status(ctx *gin.Context)
}

type storefrontHandler struct {
	credStore repository.ICredentialStore
	stateMu   sync.Mutex
	states    map[string]time.Time // state -> expiry
}

func NewStorefrontHandler(credStore repository.ICredentialStore) IStorefrontHandler {
	return &storefrontHandler{credStore: credStore, states: map[string]time.Time{}}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type authorizeParams struct {
	ClientID    string `url:"client_id"`
	Scope       string `url:"scope"`
	RedirectURI string `url:"redirect_uri"`
	State       string `url:"state"`
}

// GetAuthURL builds the storefront install/authorize URL (the operator must
// approve in a browser).
func (h *storefrontHandler) GetAuthURL(c *gin.Context) {
	conf := configuration.C.Shopify
	if conf.ClientID == "" || conf.ShopDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storefront oauth not configured"})
		return
	}
	state := randomState()
	// store state with 10 minute expiry
	h.stateMu.Lock()
	h.states[state] = time.Now().Add(10 * time.Minute)
	h.stateMu.Unlock()

	params, err := query.Values(authorizeParams{
		ClientID:    conf.ClientID,
		Scope:       "write_products,read_products",
		RedirectURI: conf.RedirectURI,
		State:       state,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build_auth_url_failed"})
		return
	}
	u := url.URL{Scheme: "https", Host: conf.ShopDomain, Path: "/admin/oauth/authorize", RawQuery: params.Encode()}
	c.JSON(http.StatusOK, gin.H{"auth_url": u.String(), "state": state})
}

// Callback exchanges the authorization code for the storefront access token
// and persists it.
func (h *storefrontHandler) Callback(c *gin.Context) {
	lg := logger.GetLogger()
	conf := configuration.C.Shopify
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	// validate state
	h.stateMu.Lock()
	exp, ok := h.states[state]
	if ok && time.Now().After(exp) { // expired
		ok = false
	}
	if ok {
		delete(h.states, state)
	}
	h.stateMu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}

	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", conf.ShopDomain)
	form := url.Values{}
	form.Set("client_id", conf.ClientID)
	form.Set("client_secret", conf.ClientSecret)
	form.Set("code", code)
	resp, err := http.PostForm(tokenURL, form)
	if err != nil {
		lg.Errorf("storefront token exchange request error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_request_failed"})
		return
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		lg.WithField("body", string(body)).Error("storefront token exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}
	var tokenData struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenData); err != nil {
		lg.WithField("err", err).Error("unmarshal access token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "parse_token_failed"})
		return
	}

	cred := &model.StorefrontCredential{
		StorefrontID: conf.ShopDomain,
		AccessToken:  tokenData.AccessToken,
		Scopes:       tokenData.Scope,
	}
	if err := h.credStore.UpsertCredential(c.Request.Context(), cred); err != nil {
		lg.WithField("err", err).Error("persist storefront credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persist_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": true, "storefront": conf.ShopDomain, "scopes": tokenData.Scope})
}

// Status reports whether the configured storefront has a stored credential.
func (h *storefrontHandler) Status(c *gin.Context) {
	conf := configuration.C.Shopify
	cred, err := h.credStore.GetCredential(c.Request.Context(), conf.ShopDomain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	if cred == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "storefront": conf.ShopDomain})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connected":  true,
		"storefront": conf.ShopDomain,
		"scopes":     cred.Scopes,
		"updated_at": cred.UpdatedAt,
	})
}
