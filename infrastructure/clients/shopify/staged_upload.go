package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	fetchTimeout    = 20 * time.Second
	transferTimeout = 60 * time.Second
)

type gqlReq struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

const stagedUploadsCreateMutation = `mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters { name value }
    }
    userErrors { field message }
  }
}`

type stagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

// StagedUploadClient implements the platform's two-phase binary upload for a
// single image: request a staging target, then transfer the bytes to it with
// the signed parameter set the platform returned.
type StagedUploadClient struct {
	cfg      Config
	exec     Caller
	fetch    *http.Client
	transfer *http.Client
}

func NewStagedUploadClient(cfg Config, exec Caller) *StagedUploadClient {
	return &StagedUploadClient{
		cfg:      cfg,
		exec:     exec,
		fetch:    &http.Client{Timeout: fetchTimeout},
		transfer: &http.Client{Timeout: transferTimeout},
	}
}

// Upload resolves one candidate image to a platform resource URL. Sources
// already hosted on the platform pass through unchanged without re-uploading.
func (c *StagedUploadClient) Upload(ctx context.Context, storefrontID, sourceURL string) (string, error) {
	hosted, err := c.validateSource(sourceURL)
	if err != nil {
		return "", err
	}
	if hosted {
		return sourceURL, nil
	}

	target, err := c.requestStagingTarget(ctx, storefrontID, sourceURL)
	if err != nil {
		return "", err
	}

	data, err := c.fetchSource(ctx, sourceURL)
	if err != nil {
		return "", &TransferError{SourceURL: sourceURL, Err: err}
	}

	if err := c.transferBytes(ctx, target, sourceURL, data); err != nil {
		return "", err
	}
	// Success comes from the transfer response, never from the staging
	// response alone.
	return target.ResourceURL, nil
}

// validateSource rejects sources that cannot be fetched from the server side.
// Platform-hosted sources are reported as hosted and skipped by the caller.
func (c *StagedUploadClient) validateSource(raw string) (hosted bool, err error) {
	u, parseErr := url.Parse(raw)
	if parseErr != nil {
		return false, &InvalidSourceError{SourceURL: raw, Reason: "unparseable URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, &InvalidSourceError{SourceURL: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	host := u.Hostname()
	if host == "" {
		return false, &InvalidSourceError{SourceURL: raw, Reason: "missing host"}
	}
	for _, h := range c.cfg.resourceHosts() {
		if strings.EqualFold(host, h) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(h)) {
			return true, nil
		}
	}
	if strings.EqualFold(host, "localhost") {
		return false, &InvalidSourceError{SourceURL: raw, Reason: "loopback host"}
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return false, &InvalidSourceError{SourceURL: raw, Reason: "non-routable address"}
		}
	}
	return false, nil
}

func (c *StagedUploadClient) requestStagingTarget(ctx context.Context, storefrontID, sourceURL string) (*stagedTarget, error) {
	filename := sourceFilename(sourceURL)
	req := gqlReq{
		Query: stagedUploadsCreateMutation,
		Variables: map[string]interface{}{
			"input": []map[string]interface{}{
				{
					"resource":   "IMAGE",
					"filename":   filename,
					"mimeType":   sourceMimeType(filename),
					"httpMethod": "POST",
				},
			},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &StagingError{SourceURL: sourceURL, Err: err}
	}
	status, respBody, err := c.exec.Do(ctx, storefrontID, Request{
		Method:      http.MethodPost,
		Path:        "graphql.json",
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, &StagingError{SourceURL: sourceURL, Err: fmt.Errorf("status %d: %s", status, string(respBody))}
	}

	var resp struct {
		Data struct {
			StagedUploadsCreate struct {
				StagedTargets []stagedTarget `json:"stagedTargets"`
				UserErrors    []struct {
					Message string `json:"message"`
				} `json:"userErrors"`
			} `json:"stagedUploadsCreate"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &StagingError{SourceURL: sourceURL, Err: fmt.Errorf("failed to parse staging response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		return nil, &StagingError{SourceURL: sourceURL, Err: fmt.Errorf("graphql: %s", resp.Errors[0].Message)}
	}
	if ue := resp.Data.StagedUploadsCreate.UserErrors; len(ue) > 0 {
		return nil, &StagingError{SourceURL: sourceURL, Err: fmt.Errorf("%s", ue[0].Message)}
	}
	targets := resp.Data.StagedUploadsCreate.StagedTargets
	if len(targets) == 0 {
		return nil, &StagingError{SourceURL: sourceURL, Err: fmt.Errorf("no staging target returned")}
	}
	return &targets[0], nil
}

func (c *StagedUploadClient) fetchSource(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.fetch.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// transferBytes submits the multipart form to the staging endpoint. The
// signed parameters must appear exactly as issued, order and names verbatim,
// with the file part last.
func (c *StagedUploadClient) transferBytes(ctx context.Context, target *stagedTarget, sourceURL string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range target.Parameters {
		if err := w.WriteField(p.Name, p.Value); err != nil {
			return &TransferError{SourceURL: sourceURL, Err: err}
		}
	}
	fw, err := w.CreateFormFile("file", sourceFilename(sourceURL))
	if err != nil {
		return &TransferError{SourceURL: sourceURL, Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return &TransferError{SourceURL: sourceURL, Err: err}
	}
	if err := w.Close(); err != nil {
		return &TransferError{SourceURL: sourceURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &buf)
	if err != nil {
		return &TransferError{SourceURL: sourceURL, Err: err}
	}
	// The staging endpoint authenticates via the signed parameters; no
	// platform credential is attached.
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.transfer.Do(req)
	if err != nil {
		return &TransferError{SourceURL: sourceURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &TransferError{SourceURL: sourceURL, Status: resp.StatusCode}
	}
	return nil
}

func sourceFilename(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "image"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}

func sourceMimeType(filename string) string {
	if t := mime.TypeByExtension(path.Ext(filename)); t != "" {
		return t
	}
	return "image/jpeg"
}
