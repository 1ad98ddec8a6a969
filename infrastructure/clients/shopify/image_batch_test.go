package shopify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendor-portal/domain/model"
)

type stubUploader struct {
	results map[string]string
	errs    map[string]error
	calls   []string
}

func (s *stubUploader) Upload(_ context.Context, _ string, sourceURL string) (string, error) {
	s.calls = append(s.calls, sourceURL)
	if err, ok := s.errs[sourceURL]; ok {
		return "", err
	}
	return s.results[sourceURL], nil
}

func TestProcessKeepsCandidateOrder(t *testing.T) {
	up := &stubUploader{
		results: map[string]string{
			"https://pics.example.com/a.jpg": "https://cdn.shopify.com/staged/a.jpg",
			"https://pics.example.com/c.jpg": "https://cdn.shopify.com/staged/c.jpg",
		},
		errs: map[string]error{
			"https://pics.example.com/b.jpg": &TransferError{SourceURL: "https://pics.example.com/b.jpg", Status: 500},
		},
	}
	p := NewImageBatchProcessor(up, 6000)

	refs := []model.ImageReference{
		{SourceURL: "https://pics.example.com/a.jpg", Position: 1},
		{SourceURL: "https://pics.example.com/b.jpg", Position: 2},
		{SourceURL: "https://pics.example.com/c.jpg", Position: 3},
	}
	outcomes := p.Process(context.Background(), "storefront-1", refs)

	require.Len(t, outcomes, 3)
	assert.Equal(t, model.OutcomeUploaded, outcomes[0].State)
	assert.Equal(t, "https://cdn.shopify.com/staged/a.jpg", outcomes[0].ResourceURL)
	assert.Equal(t, model.OutcomeFailed, outcomes[1].State)
	assert.Equal(t, model.OutcomeUploaded, outcomes[2].State)
	assert.Equal(t, []string{
		"https://pics.example.com/a.jpg",
		"https://pics.example.com/b.jpg",
		"https://pics.example.com/c.jpg",
	}, up.calls, "uploads run sequentially in candidate order")
}

func TestProcessClassifiesInvalidSourcesAsSkipped(t *testing.T) {
	up := &stubUploader{
		errs: map[string]error{
			"http://localhost/a.jpg": &InvalidSourceError{SourceURL: "http://localhost/a.jpg", Reason: "loopback host"},
		},
	}
	p := NewImageBatchProcessor(up, 6000)

	outcomes := p.Process(context.Background(), "storefront-1", []model.ImageReference{
		{SourceURL: "http://localhost/a.jpg", Position: 1},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, model.OutcomeSkipped, outcomes[0].State)
	assert.Equal(t, "loopback host", outcomes[0].Reason)
}

func TestProcessEmptyBatch(t *testing.T) {
	p := NewImageBatchProcessor(&stubUploader{}, 6000)
	outcomes := p.Process(context.Background(), "storefront-1", nil)
	assert.Empty(t, outcomes)
}

func TestProcessFailureDoesNotAbortBatch(t *testing.T) {
	up := &stubUploader{
		results: map[string]string{
			"https://pics.example.com/b.jpg": "https://cdn.shopify.com/staged/b.jpg",
		},
		errs: map[string]error{
			"https://pics.example.com/a.jpg": &StagingError{SourceURL: "https://pics.example.com/a.jpg", Err: assert.AnError},
		},
	}
	p := NewImageBatchProcessor(up, 6000)

	outcomes := p.Process(context.Background(), "storefront-1", []model.ImageReference{
		{SourceURL: "https://pics.example.com/a.jpg", Position: 1},
		{SourceURL: "https://pics.example.com/b.jpg", Position: 2},
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, model.OutcomeFailed, outcomes[0].State)
	assert.Equal(t, model.OutcomeUploaded, outcomes[1].State)
}
