package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnparseable is returned by Decode for a result no tier could parse.
var ErrUnparseable = errors.New("normalize: response is not parseable")

// Decode converts a parsed result into T by re-encoding its value, for
// callers that want a typed document instead of map[string]any:
//
//	type Page struct {
//		Number     int      `json:"number"`
//		Paragraphs []string `json:"paragraphs"`
//	}
//	doc, err := normalize.Decode[struct{ Pages []Page }](result)
//
// An unparseable result yields ErrUnparseable wrapping the last parse error.
func Decode[T any](result Result) (T, error) {
	var out T
	if !result.Parsed() {
		return out, fmt.Errorf("%w: %w", ErrUnparseable, result.Err)
	}

	encoded, err := json.Marshal(result.Value)
	if err != nil {
		return out, fmt.Errorf("normalize: re-encode %s result: %w", result.Tier, err)
	}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return out, fmt.Errorf("normalize: decode into %T: %w", out, err)
	}
	return out, nil
}
