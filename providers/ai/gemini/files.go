package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/pdfstruct/internal/utils"
	"github.com/leofalp/pdfstruct/providers/ai"
	"github.com/leofalp/pdfstruct/providers/observability"
)

// UploadFile uploads data through the Files API resumable protocol and waits
// until the file is ACTIVE. The returned URI can be used in a document part.
func (p *GeminiProvider) UploadFile(ctx context.Context, displayName, mimeType string, data []byte) (*ai.File, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	span := observability.SpanFromContext(ctx)

	uploadURL, err := p.startUpload(ctx, displayName, mimeType, len(data))
	if err != nil {
		return nil, fmt.Errorf("gemini upload start: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gemini upload: error creating request: %w", err)
	}
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	req.Header.Set("x-goog-api-key", p.apiKey)

	_, body, err := utils.DoRequest(ctx, p.client, req)
	if err != nil {
		return nil, fmt.Errorf("gemini upload: %w", err)
	}

	var uploaded uploadFileResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return nil, fmt.Errorf("gemini upload: error unmarshaling response body: %w", err)
	}

	if span != nil {
		span.AddEvent("file.uploaded",
			observability.String("file.name", uploaded.File.Name),
			observability.String("file.state", uploaded.File.State),
		)
	}

	resource, err := p.waitForActive(ctx, uploaded.File)
	if err != nil {
		return nil, err
	}
	return fileFromResource(resource), nil
}

// startUpload opens a resumable upload session and returns its upload URL.
// The start response has no body worth decoding; only its header matters.
func (p *GeminiProvider) startUpload(ctx context.Context, displayName, mimeType string, size int) (string, error) {
	metadata, err := json.Marshal(createFileRequest{File: fileMetadata{DisplayName: displayName}})
	if err != nil {
		return "", fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadBaseURL+"/files", bytes.NewReader(metadata))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(size))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	res, _, err := utils.DoRequest(ctx, p.client, req)
	if err != nil {
		return "", err
	}

	uploadURL := res.Header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return "", fmt.Errorf("response carries no X-Goog-Upload-URL header")
	}
	return uploadURL, nil
}

// GetFile fetches the current state of an uploaded file by resource name
// ("files/abc123").
func (p *GeminiProvider) GetFile(ctx context.Context, name string) (*ai.File, error) {
	resource, err := p.getFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return fileFromResource(*resource), nil
}

func (p *GeminiProvider) getFile(ctx context.Context, name string) (*fileResource, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := p.baseURL + "/" + strings.TrimPrefix(name, "/")
	_, resource, err := utils.DoGetSync[fileResource](ctx, p.client, url,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini get file %s: %w", name, err)
	}
	return resource, nil
}

// waitForActive polls the file until it leaves PROCESSING. The context bounds
// the wait.
func (p *GeminiProvider) waitForActive(ctx context.Context, resource fileResource) (fileResource, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		switch resource.State {
		case fileStateActive, "":
			return resource, nil
		case fileStateFailed:
			if resource.Error != nil {
				return resource, fmt.Errorf("%w: %s: %s", ErrFileProcessingFailed, resource.Name, resource.Error.Message)
			}
			return resource, fmt.Errorf("%w: %s", ErrFileProcessingFailed, resource.Name)
		}

		select {
		case <-ctx.Done():
			return resource, fmt.Errorf("waiting for %s to become active: %w", resource.Name, ctx.Err())
		case <-ticker.C:
		}

		next, err := p.getFile(ctx, resource.Name)
		if err != nil {
			return resource, err
		}
		resource = *next
	}
}
