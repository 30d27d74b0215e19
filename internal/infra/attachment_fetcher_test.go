package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/ticketbot/internal/domain"
)

func TestAttachmentFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shot.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("PNGDATA"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := NewAttachmentFetcher(5 * time.Second)

	file, err := fetcher.Fetch(context.Background(), domain.AttachmentRef{
		URL:         srv.URL + "/shot.png",
		Filename:    "shot.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if file.Name != "shot.png" || string(file.Data) != "PNGDATA" || !file.IsImage() {
		t.Fatalf("Fetch() = %+v", file)
	}

	if _, err := fetcher.Fetch(context.Background(), domain.AttachmentRef{URL: srv.URL + "/missing.pdf", Filename: "missing.pdf"}); err == nil {
		t.Fatal("Fetch() of a 404 should fail")
	}
}

func TestAttachmentFetcherContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("JPEG"))
	}))
	defer srv.Close()
	fetcher := NewAttachmentFetcher(0)

	file, err := fetcher.Fetch(context.Background(), domain.AttachmentRef{URL: srv.URL + "/a.jpg", Filename: "a.jpg"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if file.ContentType != "image/jpeg" || !file.IsImage() {
		t.Errorf("undeclared content type = %q, want the server's", file.ContentType)
	}

	file, err = fetcher.Fetch(context.Background(), domain.AttachmentRef{URL: srv.URL + "/a.pdf", Filename: "a.pdf", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if file.ContentType != "application/pdf" || file.IsImage() {
		t.Errorf("declared content type = %q, want application/pdf", file.ContentType)
	}
}

func TestAttachmentFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/file.txt"
	srv.Close()

	if _, err := NewAttachmentFetcher(0).Fetch(context.Background(), domain.AttachmentRef{URL: url, Filename: "file.txt"}); err == nil {
		t.Fatal("Fetch() against a closed server should fail")
	}
}
