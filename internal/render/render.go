// Package render presents normalization results to people and to HTTP
// clients.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leofalp/pdfstruct/core/extract"
	"github.com/leofalp/pdfstruct/core/normalize"
	"github.com/leofalp/pdfstruct/internal/utils"
	"github.com/leofalp/pdfstruct/providers/ai"
)

// Envelope statuses.
const (
	StatusParsed      = "parsed"
	StatusUnparseable = "unparseable"
)

// Envelope is the JSON body returned for a result. Parsed results carry Tier
// and Document; unparseable ones carry Error and the untouched Raw text.
// Document and Raw are always present for their status, so a parsed null
// encodes as "document": null and an empty response as "raw": "".
type Envelope struct {
	Status   string    `json:"status"`
	Tier     string    `json:"tier,omitempty"`
	Document any       `json:"document,omitempty"`
	Error    string    `json:"error,omitempty"`
	Raw      string    `json:"raw,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type parsedEnvelope struct {
	Status   string    `json:"status"`
	Tier     string    `json:"tier"`
	Document any       `json:"document"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type unparseableEnvelope struct {
	Status   string    `json:"status"`
	Error    string    `json:"error"`
	Raw      string    `json:"raw"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// MarshalJSON writes only the fields that belong to the envelope's status.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Status == StatusUnparseable {
		return json.Marshal(unparseableEnvelope{
			Status:   e.Status,
			Error:    e.Error,
			Raw:      e.Raw,
			Metadata: e.Metadata,
		})
	}
	return json.Marshal(parsedEnvelope{
		Status:   e.Status,
		Tier:     e.Tier,
		Document: e.Document,
		Metadata: e.Metadata,
	})
}

// Metadata describes the inference call behind an extraction.
type Metadata struct {
	Model        string    `json:"model,omitempty"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Mode         string    `json:"mode"`
	Usage        *ai.Usage `json:"usage,omitempty"`
	File         *ai.File  `json:"file,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
}

// NewEnvelope builds the envelope for result.
func NewEnvelope(result normalize.Result) Envelope {
	if !result.Parsed() {
		return Envelope{
			Status: StatusUnparseable,
			Error:  result.LastError(),
			Raw:    result.Raw,
		}
	}
	return Envelope{
		Status:   StatusParsed,
		Tier:     result.Tier.String(),
		Document: result.Value,
	}
}

// FromExtraction builds the envelope for an extraction, including its call
// metadata.
func FromExtraction(extraction *extract.Extraction) Envelope {
	envelope := NewEnvelope(extraction.Result)
	envelope.Metadata = &Metadata{
		Model:        extraction.Model,
		FinishReason: extraction.FinishReason,
		Mode:         string(extraction.Mode),
		Usage:        extraction.Usage,
		File:         extraction.File,
		DurationMS:   extraction.Duration.Milliseconds(),
	}
	return envelope
}

// Text writes result for a terminal: the document as indented JSON, or an
// error line followed by the raw response exactly as received.
func Text(w io.Writer, result normalize.Result) error {
	if result.Parsed() {
		_, err := fmt.Fprintln(w, utils.JSONToString(result.Value, true))
		return err
	}
	_, err := fmt.Fprintf(w, "Error: could not parse the model response as JSON: %s\n\n%s\n", result.LastError(), result.Raw)
	return err
}
