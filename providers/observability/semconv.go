package observability

// Attribute keys, span names and metric names shared by every component.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the provider name (e.g. "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the response identifier reported by the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrTokenType distinguishes "prompt" from "completion" token counts
	AttrTokenType = "llm.tokens.type"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- Not a credential, token refers to LLM tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseLength is the length of the response text in bytes
	AttrResponseLength = "response.length"
)

// --- Document Attributes ---

const (
	// AttrDocumentMIMEType is the detected MIME type of the submitted document
	AttrDocumentMIMEType = "document.mime_type"

	// AttrDocumentSize is the document size in bytes
	AttrDocumentSize = "document.size"

	// AttrDocumentMode is how the document reached the model ("inline" or "upload")
	AttrDocumentMode = "document.mode"

	// AttrDocumentURI is the Files API URI of an uploaded document
	AttrDocumentURI = "document.uri"

	// AttrPromptLength is the prompt length in bytes
	AttrPromptLength = "prompt.length"
)

// --- Normalization Attributes ---

const (
	// AttrNormalizeTier is the parse tier that succeeded, or "none"
	AttrNormalizeTier = "normalize.tier"

	// AttrNormalizeRawLength is the length of the raw model text
	AttrNormalizeRawLength = "normalize.raw_length"

	// AttrNormalizeRepairedLength is the length of the text after repair stages
	AttrNormalizeRepairedLength = "normalize.repaired_length"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorKind classifies a failure for metrics (e.g. "validation", "inference")
	AttrErrorKind = "error.kind"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status.description"
)

// --- Span Names ---

const (
	// SpanInference covers one provider call as seen from outside the middleware chain
	SpanInference = "pdfstruct.inference"

	// SpanExtract covers one document extraction, from validation to normalization
	SpanExtract = "pdfstruct.extract"

	// SpanUpload covers a Files API upload including the wait for ACTIVE
	SpanUpload = "pdfstruct.upload"

	// SpanNormalize covers normalization of one raw response
	SpanNormalize = "pdfstruct.normalize"
)

// --- Metric Names ---

const (
	// MetricNormalizeResults counts normalization outcomes, labelled by tier
	MetricNormalizeResults = "pdfstruct.normalize.results"

	// MetricExtractErrors counts failed extractions, labelled by error kind
	MetricExtractErrors = "pdfstruct.extract.errors"

	// MetricInferenceRequests counts provider calls, labelled by status
	MetricInferenceRequests = "pdfstruct.inference.requests"

	// MetricInferenceDuration records model call latency in seconds
	MetricInferenceDuration = "pdfstruct.inference.duration"

	// MetricTokensTotal counts tokens reported by the model, labelled by token type
	MetricTokensTotal = "pdfstruct.llm.tokens" // #nosec G101 -- Not a credential
)
