package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	status int
	body   []byte
	err    error
	last   Request
}

func (s *stubCaller) Do(_ context.Context, _ string, req Request) (int, []byte, error) {
	s.last = req
	return s.status, s.body, s.err
}

func stagingResponse(targetURL, resourceURL string, params [][2]string) []byte {
	type param struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	ps := make([]param, 0, len(params))
	for _, p := range params {
		ps = append(ps, param{Name: p[0], Value: p[1]})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"stagedUploadsCreate": map[string]interface{}{
				"stagedTargets": []map[string]interface{}{
					{"url": targetURL, "resourceUrl": resourceURL, "parameters": ps},
				},
				"userErrors": []interface{}{},
			},
		},
	})
	return body
}

func TestUploadPassesThroughHostedSources(t *testing.T) {
	exec := &stubCaller{}
	c := NewStagedUploadClient(testConfig(""), exec)

	url, err := c.Upload(context.Background(), "storefront-1", "https://cdn.shopify.com/s/files/1/photo.jpg")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.shopify.com/s/files/1/photo.jpg", url)
	assert.Empty(t, exec.last.Method, "hosted sources must not trigger a staging request")
}

func TestUploadRejectsUnusableSources(t *testing.T) {
	c := NewStagedUploadClient(testConfig(""), &stubCaller{})

	cases := []string{
		"ftp://example.com/photo.jpg",
		"http://localhost/photo.jpg",
		"http://127.0.0.1/photo.jpg",
		"http://10.0.0.12/photo.jpg",
		"http://192.168.1.5/photo.jpg",
		"not a url at all\x7f://",
	}
	for _, src := range cases {
		_, err := c.Upload(context.Background(), "storefront-1", src)
		var invalid *InvalidSourceError
		require.ErrorAs(t, err, &invalid, "source %q", src)
	}
}

func TestUploadTransfersBytesWithSignedParameters(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer source.Close()

	var formOrder []string
	var fileContent string
	staging := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reader, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}
			formOrder = append(formOrder, part.FormName())
			if part.FormName() == "file" {
				buf := make([]byte, 64)
				n, _ := part.Read(buf)
				fileContent = string(buf[:n])
			}
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer staging.Close()

	exec := &stubCaller{
		status: http.StatusOK,
		body: stagingResponse(staging.URL, "https://cdn.shopify.com/staged/photo.jpg", [][2]string{
			{"key", "staged/photo.jpg"},
			{"policy", "signed-policy"},
			{"signature", "sig"},
		}),
	}
	c := NewStagedUploadClient(testConfig(""), exec)

	url, err := c.upload(context.Background(), "storefront-1", fmt.Sprintf("%s/photo.jpg", source.URL))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.shopify.com/staged/photo.jpg", url)
	require.Equal(t, []string{"key", "policy", "signature", "file"}, formOrder, "signed parameters verbatim, file part last")
	assert.Equal(t, "image-bytes", fileContent)
	assert.Equal(t, "graphql.json", exec.last.Path)
}

// upload skips source validation so tests can feed from loopback servers.
func (c *StagedUploadClient) upload(ctx context.Context, storefrontID, sourceURL string) (string, error) {
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
	return target.ResourceURL, nil
}

func TestUploadFailsWhenTransferRejected(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer source.Close()

	staging := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer staging.Close()

	exec := &stubCaller{
		status: http.StatusOK,
		body:   stagingResponse(staging.URL, "https://cdn.shopify.com/staged/photo.jpg", nil),
	}
	c := NewStagedUploadClient(testConfig(""), exec)

	_, err := c.upload(context.Background(), "storefront-1", fmt.Sprintf("%s/photo.jpg", source.URL))

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, http.StatusForbidden, transferErr.Status)
}

func TestUploadFailsOnStagingUserError(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"stagedUploadsCreate": map[string]interface{}{
				"stagedTargets": []interface{}{},
				"userErrors": []map[string]string{
					{"message": "filename is invalid"},
				},
			},
		},
	})
	exec := &stubCaller{status: http.StatusOK, body: body}
	c := NewStagedUploadClient(testConfig(""), exec)

	_, err := c.upload(context.Background(), "storefront-1", "https://pics.example.com/photo.jpg")

	var stagingErr *StagingError
	require.ErrorAs(t, err, &stagingErr)
	assert.Contains(t, stagingErr.Error(), "filename is invalid")
}
