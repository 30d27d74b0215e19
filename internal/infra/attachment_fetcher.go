package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/spec-kit/ticketbot/internal/domain"
)

// AttachmentFetcher downloads user supplied attachments so they can be
// re-uploaded. Requests are not retried.
type AttachmentFetcher struct {
	client *req.Client
}

// NewAttachmentFetcher builds a fetcher. A zero timeout leaves requests
// unbounded.
func NewAttachmentFetcher(timeout time.Duration) *AttachmentFetcher {
	client := req.C().SetUserAgent("ticketbot")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &AttachmentFetcher{client: client}
}

// Fetch returns the attachment bytes under the original filename. The
// declared content type wins over the one the server reports.
func (f *AttachmentFetcher) Fetch(ctx context.Context, ref domain.AttachmentRef) (*domain.File, error) {
	resp, err := f.client.R().SetContext(ctx).Get(ref.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref.Filename, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", ref.Filename, resp.StatusCode)
	}
	contentType := ref.ContentType
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	return &domain.File{
		Name:        ref.Filename,
		ContentType: contentType,
		Data:        resp.Bytes(),
	}, nil
}
