package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newFilesServer emulates the resumable upload endpoints and a files/{id}
// resource that reports PROCESSING for the first polls.
func newFilesServer(t *testing.T, processingPolls int32, finalState string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/upload/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Upload-Protocol") != "resumable" || r.Header.Get("X-Goog-Upload-Command") != "start" {
			t.Errorf("unexpected start headers %v", r.Header)
		}
		if r.Header.Get("X-Goog-Upload-Header-Content-Length") != "8" {
			t.Errorf("unexpected content length header %q", r.Header.Get("X-Goog-Upload-Header-Content-Length"))
		}
		if r.Header.Get("X-Goog-Upload-Header-Content-Type") != "application/pdf" {
			t.Errorf("unexpected content type header %q", r.Header.Get("X-Goog-Upload-Header-Content-Type"))
		}
		w.Header().Set("X-Goog-Upload-URL", server.URL+"/session/1")
	})
	mux.HandleFunc("/session/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Upload-Command") != "upload, finalize" {
			t.Errorf("unexpected upload command %q", r.Header.Get("X-Goog-Upload-Command"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "%PDF-1.4" {
			t.Errorf("unexpected upload body %q", body)
		}
		fmt.Fprint(w, `{"file":{"name":"files/abc","mimeType":"application/pdf","uri":"https://files/abc","state":"PROCESSING","sizeBytes":"8"}}`)
	})
	mux.HandleFunc("/api/files/abc", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key on poll")
		}
		state := finalState
		if atomic.AddInt32(&polls, 1) <= processingPolls {
			state = fileStateProcessing
		}
		fmt.Fprintf(w, `{"name":"files/abc","mimeType":"application/pdf","uri":"https://files/abc","state":%q,"sizeBytes":"8"}`, state)
	})

	server = httptest.NewServer(mux)
	return server, &polls
}

func newTestUploader(server *httptest.Server) *GeminiProvider {
	return New(Config{
		APIKey:        "test-key",
		BaseURL:       server.URL + "/api",
		UploadBaseURL: server.URL + "/upload",
		HTTPClient:    server.Client(),
		PollInterval:  5 * time.Millisecond,
	})
}

func TestUploadFile_WaitsForActive(t *testing.T) {
	server, polls := newFilesServer(t, 2, fileStateActive)
	defer server.Close()

	file, err := newTestUploader(server).UploadFile(context.Background(), "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.State != fileStateActive || file.URI != "https://files/abc" || file.SizeBytes != 8 {
		t.Errorf("unexpected file %+v", file)
	}
	if got := atomic.LoadInt32(polls); got != 3 {
		t.Errorf("expected 3 polls, got %d", got)
	}
}

func TestUploadFile_Failed(t *testing.T) {
	server, _ := newFilesServer(t, 0, fileStateFailed)
	defer server.Close()

	_, err := newTestUploader(server).UploadFile(context.Background(), "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if !errors.Is(err, ErrFileProcessingFailed) {
		t.Errorf("expected ErrFileProcessingFailed, got %v", err)
	}
}

func TestUploadFile_ContextBoundsWait(t *testing.T) {
	server, _ := newFilesServer(t, 1<<30, fileStateActive)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestUploader(server).UploadFile(ctx, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestUploadFile_MissingUploadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := newTestUploader(server).UploadFile(context.Background(), "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err == nil {
		t.Fatal("expected an error when the start response has no upload URL")
	}
}

func TestUploadFile_MissingAPIKey(t *testing.T) {
	_, err := New(Config{}).UploadFile(context.Background(), "x.pdf", "application/pdf", nil)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGetFile(t *testing.T) {
	server, _ := newFilesServer(t, 0, fileStateActive)
	defer server.Close()

	file, err := newTestUploader(server).GetFile(context.Background(), "files/abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.State != fileStateActive {
		t.Errorf("expected ACTIVE, got %q", file.State)
	}
}
