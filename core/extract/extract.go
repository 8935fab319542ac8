package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/pdfstruct/core/client"
	"github.com/leofalp/pdfstruct/core/normalize"
	"github.com/leofalp/pdfstruct/providers/ai"
	"github.com/leofalp/pdfstruct/providers/observability"
)

// DefaultPrompt is sent when a request carries no prompt of its own.
const DefaultPrompt = "Extract the PDF as structured JSON with pages, sections, sub-sections, paragraphs, tables, and charts. Output only valid JSON."

// Error kinds recorded on the extract error metric.
const (
	errorKindValidation = "validation"
	errorKindUpload     = "upload"
	errorKindInference  = "inference"
)

// Request is one extraction. Empty Prompt and Mode fall back to the
// Extractor's defaults.
type Request struct {
	Document Document
	Prompt   string
	Mode     DocumentMode
}

// Extraction is the normalized result of one call together with the call's
// metadata.
type Extraction struct {
	Result       normalize.Result
	Model        string
	FinishReason string
	Usage        *ai.Usage
	// Mode is the mode actually used, never ModeAuto.
	Mode DocumentMode
	// File is set when the document was uploaded.
	File     *ai.File
	Duration time.Duration
}

// Extractor runs extractions. It is safe for concurrent use.
type Extractor struct {
	client        *client.Client
	normalizer    *normalize.Normalizer
	observer      observability.Provider
	defaultPrompt string
	mode          DocumentMode
	inlineLimit   int64
	maxSize       int64
	// requestTimeout bounds upload, file polling and inference together.
	requestTimeout time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDefaultPrompt replaces DefaultPrompt. Blank values are ignored.
func WithDefaultPrompt(prompt string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(prompt) != "" {
			e.defaultPrompt = prompt
		}
	}
}

// WithMode sets the mode used when a request does not name one.
func WithMode(mode DocumentMode) Option {
	return func(e *Extractor) {
		if mode != "" {
			e.mode = mode
		}
	}
}

// WithInlineLimit sets the largest document ModeAuto sends inline.
func WithInlineLimit(limit int64) Option {
	return func(e *Extractor) {
		if limit > 0 {
			e.inlineLimit = limit
		}
	}
}

// WithMaxDocumentSize sets the largest document accepted at all.
func WithMaxDocumentSize(size int64) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.maxSize = size
		}
	}
}

// WithRequestTimeout bounds each Extract call, including any upload and the
// wait for the uploaded file to become active. Zero leaves the caller's
// context as the only bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.requestTimeout = d
		}
	}
}

// WithObserver enables spans, metrics and logs for extractions.
func WithObserver(observer observability.Provider) Option {
	return func(e *Extractor) {
		e.observer = observer
	}
}

// WithNormalizer replaces the default normalization pipeline.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Extractor) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// New returns an Extractor sending requests through c.
func New(c *client.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:        c,
		normalizer:    normalize.New(),
		defaultPrompt: DefaultPrompt,
		mode:          ModeAuto,
		inlineLimit:   DefaultInlineLimit,
		maxSize:       DefaultMaxDocumentSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract validates the document, sends it with the prompt and normalizes
// the response. Errors are returned only for validation, upload and
// transport failures; an unusable response is reported through
// Extraction.Result.
func (e *Extractor) Extract(ctx context.Context, req Request) (*Extraction, error) {
	start := time.Now()

	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	ctx, span := e.startSpan(ctx, observability.SpanExtract,
		observability.Int(observability.AttrDocumentSize, len(req.Document.Data)),
	)
	defer span.End()

	if err := Validate(req.Document.Data, e.maxSize); err != nil {
		return nil, e.fail(ctx, span, errorKindValidation, err)
	}

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = e.defaultPrompt
	}

	mode, err := e.resolveMode(ctx, req.Mode, len(req.Document.Data))
	if err != nil {
		return nil, e.fail(ctx, span, errorKindValidation, err)
	}

	span.SetAttributes(
		observability.String(observability.AttrDocumentMode, string(mode)),
		observability.Int(observability.AttrPromptLength, len(prompt)),
	)

	extraction := &Extraction{Mode: mode}

	var documentPart ai.ContentPart
	switch mode {
	case ModeUpload:
		file, err := e.upload(ctx, req.Document)
		if err != nil {
			return nil, e.fail(ctx, span, errorKindUpload, err)
		}
		extraction.File = file
		span.SetAttributes(observability.String(observability.AttrDocumentURI, file.URI))
		documentPart = ai.NewDocumentPartFromURI(PDFMimeType, file.URI)
	default:
		documentPart = ai.NewDocumentPart(PDFMimeType, base64.StdEncoding.EncodeToString(req.Document.Data))
	}

	response, err := e.client.Send(ctx, ai.ChatRequest{
		Messages: []ai.Message{{
			Role:         ai.RoleUser,
			ContentParts: []ai.ContentPart{documentPart, ai.NewTextPart(prompt)},
		}},
	})
	if err != nil {
		return nil, e.fail(ctx, span, errorKindInference, fmt.Errorf("extract: %w", err))
	}

	extraction.Result = e.NormalizeText(ctx, response.Content)
	extraction.Model = response.Model
	if extraction.Model == "" {
		extraction.Model = e.client.DefaultModel()
	}
	extraction.FinishReason = response.FinishReason
	extraction.Usage = response.Usage

	extraction.Duration = time.Since(start)

	span.SetAttributes(observability.String(observability.AttrNormalizeTier, extraction.Result.Tier.String()))
	span.SetStatus(observability.StatusOK, "extracted")

	if e.observer != nil {
		e.observer.Info(ctx, "extraction completed",
			observability.String(observability.AttrDocumentMode, string(mode)),
			observability.String(observability.AttrNormalizeTier, extraction.Result.Tier.String()),
			observability.String(observability.AttrLLMFinishReason, extraction.FinishReason),
			observability.Duration(observability.AttrDuration, extraction.Duration),
		)
	}

	return extraction, nil
}

// NormalizeText normalizes a model response and records which tier
// succeeded. It never fails; see normalize.Normalizer.Normalize.
func (e *Extractor) NormalizeText(ctx context.Context, raw string) normalize.Result {
	ctx, span := e.startSpan(ctx, observability.SpanNormalize,
		observability.Int(observability.AttrNormalizeRawLength, len(raw)),
	)
	defer span.End()

	result := e.normalizer.Normalize(raw)

	span.SetAttributes(observability.String(observability.AttrNormalizeTier, result.Tier.String()))
	if !result.Parsed() {
		span.SetStatus(observability.StatusError, "unparseable")
	} else {
		span.SetStatus(observability.StatusOK, "parsed")
	}

	if e.observer == nil {
		return result
	}

	e.observer.Counter(observability.MetricNormalizeResults).Add(ctx, 1,
		observability.String(observability.AttrNormalizeTier, result.Tier.String()),
	)
	if !result.Parsed() {
		e.observer.Warn(ctx, "response could not be parsed",
			observability.String(observability.AttrError, result.LastError()),
			observability.Int(observability.AttrNormalizeRawLength, len(raw)),
		)
	}

	return result
}

// resolveMode picks the concrete mode for a document of the given size.
// ModeAuto falls back to inline when the provider cannot upload.
func (e *Extractor) resolveMode(ctx context.Context, requested DocumentMode, size int) (DocumentMode, error) {
	mode := requested
	if mode == "" {
		mode = e.mode
	}

	_, canUpload := e.client.Provider().(ai.FileUploader)

	switch mode {
	case ModeInline:
		return ModeInline, nil
	case ModeUpload:
		if !canUpload {
			return "", ErrUploadUnsupported
		}
		return ModeUpload, nil
	case ModeAuto:
		if int64(size) <= e.inlineLimit {
			return ModeInline, nil
		}
		if !canUpload {
			if e.observer != nil {
				e.observer.Warn(ctx, "document exceeds inline limit but provider cannot upload, sending inline",
					observability.Int(observability.AttrDocumentSize, size),
				)
			}
			return ModeInline, nil
		}
		return ModeUpload, nil
	default:
		return "", fmt.Errorf("extract: unknown document mode %q", mode)
	}
}

func (e *Extractor) upload(ctx context.Context, doc Document) (*ai.File, error) {
	uploader, ok := e.client.Provider().(ai.FileUploader)
	if !ok {
		return nil, ErrUploadUnsupported
	}

	name := doc.Name
	if name == "" {
		name = "document.pdf"
	}

	ctx, span := e.startSpan(ctx, observability.SpanUpload,
		observability.String(observability.AttrDocumentMIMEType, PDFMimeType),
		observability.Int(observability.AttrDocumentSize, len(doc.Data)),
	)
	defer span.End()

	file, err := uploader.UploadFile(ctx, name, PDFMimeType, doc.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "upload failed")
		return nil, fmt.Errorf("extract: upload: %w", err)
	}
	span.SetStatus(observability.StatusOK, "uploaded")
	return file, nil
}

// fail records err under kind and returns it unchanged.
func (e *Extractor) fail(ctx context.Context, span observability.Span, kind string, err error) error {
	span.RecordError(err)
	span.SetAttributes(observability.String(observability.AttrErrorKind, kind))
	span.SetStatus(observability.StatusError, kind+" failed")

	if e.observer == nil {
		return err
	}

	e.observer.Counter(observability.MetricExtractErrors).Add(ctx, 1,
		observability.String(observability.AttrErrorKind, kind),
	)
	level := e.observer.Error
	if kind == errorKindValidation || errors.Is(err, context.Canceled) {
		level = e.observer.Warn
	}
	level(ctx, "extraction failed",
		observability.String(observability.AttrErrorKind, kind),
		observability.Error(err),
	)
	return err
}

// startSpan starts a span on the observer, or returns a no-op span when
// there is none. The observer is stored in the context so providers can log
// through it.
func (e *Extractor) startSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	if e.observer == nil {
		return ctx, noopSpan{}
	}
	ctx = observability.ContextWithObserver(ctx, e.observer)
	return e.observer.StartSpan(ctx, name, attrs...)
}

type noopSpan struct{}

func (noopSpan) End()                                        {}
func (noopSpan) SetAttributes(...observability.Attribute)    {}
func (noopSpan) SetStatus(observability.StatusCode, string)  {}
func (noopSpan) RecordError(error)                           {}
func (noopSpan) AddEvent(string, ...observability.Attribute) {}
