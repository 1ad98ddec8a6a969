package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vendor-portal/infrastructure/logger"
)

const requestTimeout = 30 * time.Second

// Request describes one outbound platform call. Path is relative to the
// versioned admin API root; RawURL overrides it for absolute targets.
type Request struct {
	Method      string
	Path        string
	RawURL      string
	Body        []byte
	ContentType string
}

// tokenSource is the credential surface the executor needs; satisfied by
// *TokenManager.
type tokenSource interface {
	Token(ctx context.Context, storefrontID string) (string, error)
	Refresh(ctx context.Context, storefrontID string) (string, error)
}

// Caller is the outbound-call surface the clients build on; satisfied by
// *Executor.
type Caller interface {
	Do(ctx context.Context, storefrontID string, req Request) (int, []byte, error)
}

// Executor wraps every outbound platform call with credential injection and a
// single 401-triggered retry against a freshly exchanged credential. It does
// not back off on rate limits or server errors; those statuses are returned
// to the caller untouched.
type Executor struct {
	cfg    Config
	tokens tokenSource
	client *http.Client
}

func NewExecutor(cfg Config, tokens *TokenManager) *Executor {
	return &Executor{cfg: cfg, tokens: tokens, client: &http.Client{Timeout: requestTimeout}}
}

func (e *Executor) Do(ctx context.Context, storefrontID string, req Request) (int, []byte, error) {
	token, err := e.tokens.Token(ctx, storefrontID)
	if err != nil {
		return 0, nil, err
	}
	status, body, err := e.send(ctx, req, token)
	if err != nil {
		return 0, nil, err
	}
	if status == http.StatusUnauthorized {
		logger.GetLogger().
			WithField("storefront_id", storefrontID).
			WithField("path", req.Path).
			Info("Platform returned 401, retrying once with fresh credential")
		token, err = e.tokens.Refresh(ctx, storefrontID)
		if err != nil {
			return 0, nil, err
		}
		status, body, err = e.send(ctx, req, token)
		if err != nil {
			return 0, nil, err
		}
		if status == http.StatusUnauthorized {
			return status, body, &AuthorizationError{Status: status, Body: string(body)}
		}
	}
	return status, body, nil
}

func (e *Executor) send(ctx context.Context, req Request, token string) (int, []byte, error) {
	target := req.RawURL
	if target == "" {
		target = e.cfg.apiURL(req.Path)
	}
	var reqBody io.Reader
	if len(req.Body) > 0 {
		reqBody = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("X-Shopify-Access-Token", token)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
