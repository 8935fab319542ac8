package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/pdfstruct/internal/utils"
	"github.com/leofalp/pdfstruct/providers/ai"
	"github.com/leofalp/pdfstruct/providers/observability"
)

const (
	DefaultBaseURL       = "https://generativelanguage.googleapis.com/v1beta"
	DefaultUploadBaseURL = "https://generativelanguage.googleapis.com/upload/v1beta"
	DefaultModel         = "gemini-1.5-pro"

	defaultPollInterval = 2 * time.Second
)

var (
	// ErrMissingAPIKey is returned by every call when no API key is configured.
	ErrMissingAPIKey = errors.New("gemini: API key is not set")

	// ErrPromptBlocked is returned when Gemini refuses the prompt and
	// produces no candidates.
	ErrPromptBlocked = errors.New("gemini: prompt blocked")

	// ErrFileProcessingFailed is returned when an uploaded file ends in the
	// FAILED state.
	ErrFileProcessingFailed = errors.New("gemini: file processing failed")
)

// Config holds the provider settings. Zero values fall back to the Default*
// constants and http.DefaultClient.
type Config struct {
	APIKey        string
	BaseURL       string
	UploadBaseURL string
	Model         string
	HTTPClient    *http.Client

	// PollInterval is the wait between file state checks after an upload.
	PollInterval time.Duration
}

// GeminiProvider implements ai.Provider and ai.FileUploader for Google's
// Gemini API.
type GeminiProvider struct {
	apiKey        string
	baseURL       string
	uploadBaseURL string
	model         string
	client        *http.Client
	pollInterval  time.Duration
}

var (
	_ ai.Provider     = (*GeminiProvider)(nil)
	_ ai.FileUploader = (*GeminiProvider)(nil)
)

// New creates a Gemini provider from cfg. The API key is taken only from
// cfg; nothing is read from the environment.
func New(cfg Config) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		uploadBaseURL: strings.TrimRight(cfg.UploadBaseURL, "/"),
		model:         cfg.Model,
		client:        cfg.HTTPClient,
		pollInterval:  cfg.PollInterval,
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.uploadBaseURL == "" {
		p.uploadBaseURL = DefaultUploadBaseURL
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	if p.pollInterval <= 0 {
		p.pollInterval = defaultPollInterval
	}
	return p
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithUploadBaseURL sets the base URL for Files API uploads.
func (p *GeminiProvider) WithUploadBaseURL(uploadBaseURL string) *GeminiProvider {
	p.uploadBaseURL = strings.TrimRight(uploadBaseURL, "/")
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// Model returns the model used when a request does not name one.
func (p *GeminiProvider) Model() string {
	return p.model
}

// SendMessage calls models/{model}:generateContent and returns the
// candidate's text unchanged.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := request.Model
	if model == "" {
		model = p.model
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing request",
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMModel, model),
		)
	}

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)

	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		url,
		"",
		requestToGemini(request),
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, fmt.Errorf("gemini generateContent: %w", err)
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	result := geminiToGeneric(*resp)
	if result.Model == "" {
		result.Model = model
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, result.Id),
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
		)
	}

	if len(resp.Candidates) == 0 && result.Refusal != "" {
		return nil, fmt.Errorf("%w: %s", ErrPromptBlocked, result.Refusal)
	}

	return result, nil
}
