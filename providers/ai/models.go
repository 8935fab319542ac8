package ai

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest is a single generation request. Documents travel as content
// parts of a user message alongside the prompt text.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name; providers fall back to their default when empty
	Messages         []Message         `json:"messages"`                    // Conversation turns, usually one user message
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation. Content is the plain
// text form; ContentParts, when set, carries multimodal parts and takes
// precedence.
type Message struct {
	Role         MessageRole   `json:"role"`
	Content      string        `json:"content,omitempty"`
	ContentParts []ContentPart `json:"content_parts,omitempty"`
}

// ContentType names the kind of a ContentPart.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeDocument ContentType = "document"
)

// ContentPart is one piece of a multimodal message.
type ContentPart struct {
	Type     ContentType   `json:"type"`
	Text     string        `json:"text,omitempty"`
	Document *DocumentData `json:"document,omitempty"`
}

// DocumentData holds a document either inline (base64 Data) or by reference
// to a previously uploaded file (URI). Exactly one of the two is set.
type DocumentData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// NewTextPart returns a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentTypeText, Text: text}
}

// NewDocumentPart returns an inline document part. data must already be
// base64-encoded.
func NewDocumentPart(mimeType, data string) ContentPart {
	return ContentPart{Type: ContentTypeDocument, Document: &DocumentData{MimeType: mimeType, Data: data}}
}

// NewDocumentPartFromURI returns a document part referencing an uploaded file.
func NewDocumentPartFromURI(mimeType, uri string) ContentPart {
	return ContentPart{Type: ContentTypeDocument, Document: &DocumentData{MimeType: mimeType, URI: uri}}
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"` // Sampling temperature. Lower is more deterministic.
	TopP            float32 `json:"top_p,omitempty"`
}

type ResponseFormat struct {
	// Type is "text" or "json_object". json_object asks the provider for a
	// JSON MIME type where supported; the response still goes through
	// normalization because models do not always comply.
	Type string `json:"type,omitempty"`
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
}

// ChatResponse is the provider-agnostic result of a generation call.
// Content is the model's text, exactly as returned.
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Refusal      string `json:"refusal,omitempty"` // Set when the provider blocked the prompt or response
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Finish reasons shared by all providers.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
