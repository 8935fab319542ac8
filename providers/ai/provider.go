package ai

import (
	"context"
	"net/http"
	"time"
)

// Provider is the interface every inference backend satisfies.
type Provider interface {
	// SendMessage sends a request and returns the completed response. It
	// returns an error if the call fails, the context is cancelled, or the
	// response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// FileUploader is an optional interface for providers that accept documents
// by reference. Callers detect support with a type assertion and fall back
// to inline parts otherwise.
type FileUploader interface {
	// UploadFile uploads data and blocks until the file can be referenced
	// from a request.
	UploadFile(ctx context.Context, displayName, mimeType string, data []byte) (*File, error)
}

// File describes an uploaded document.
type File struct {
	Name      string    `json:"name"` // Provider resource name, e.g. "files/abc123"
	URI       string    `json:"uri"`  // Value to put in DocumentData.URI
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
