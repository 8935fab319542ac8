package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// PDFMimeType is the MIME type documents are validated against and sent as.
const PDFMimeType = "application/pdf"

// Size defaults. Gemini caps inline request payloads at 20 MiB; larger
// documents go through the Files API.
const (
	DefaultInlineLimit     int64 = 20 << 20
	DefaultMaxDocumentSize int64 = 50 << 20
)

var (
	ErrEmptyDocument    = errors.New("extract: document is empty")
	ErrNotPDF           = errors.New("extract: document is not a PDF")
	ErrDocumentTooLarge = errors.New("extract: document is too large")
	// ErrUploadUnsupported is returned when upload mode is requested but the
	// provider does not implement ai.FileUploader.
	ErrUploadUnsupported = errors.New("extract: provider does not support file upload")
)

// DocumentMode selects how the PDF reaches the model.
type DocumentMode string

const (
	// ModeAuto sends documents up to the inline limit inline and uploads
	// larger ones.
	ModeAuto   DocumentMode = "auto"
	ModeInline DocumentMode = "inline"
	ModeUpload DocumentMode = "upload"
)

// ParseMode parses a mode name case-insensitively. An empty string is ModeAuto.
func ParseMode(s string) (DocumentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeAuto):
		return ModeAuto, nil
	case string(ModeInline):
		return ModeInline, nil
	case string(ModeUpload):
		return ModeUpload, nil
	default:
		return "", fmt.Errorf("extract: unknown document mode %q", s)
	}
}

// Document is an uploaded file. Name is used as the display name when the
// file is uploaded and may be empty.
type Document struct {
	Name string
	Data []byte
}

// Validate checks that data is a non-empty PDF no larger than maxSize.
// A non-positive maxSize disables the size check.
func Validate(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrDocumentTooLarge, len(data), maxSize)
	}
	if detected := mimetype.Detect(data); !detected.Is(PDFMimeType) {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, detected.String())
	}
	return nil
}
