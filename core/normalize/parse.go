package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	// ErrNoClosingBrace is reported by truncation recovery when the text holds
	// no '}' to cut at.
	ErrNoClosingBrace = errors.New("no closing brace to recover from")

	// ErrIncomplete is reported by the lenient tier when brackets or strings
	// are left open. Completing them would invent structure the model never
	// emitted.
	ErrIncomplete = errors.New("structurally incomplete text")

	errEmpty       = errors.New("empty text")
	errNotDocument = errors.New("text does not start with an object or array")
)

// tier pairs a Tier with the parse function that implements it.
type tier struct {
	tier  Tier
	parse func(text string) (any, error)
}

func defaultTiers() []tier {
	return []tier{
		{tier: TierStrict, parse: parseStrict},
		{tier: TierLenient, parse: parseLenient},
		{tier: TierTruncation, parse: recoverTruncated},
	}
}

// parseStrict parses text under the standard JSON grammar. Trailing data after
// the first value is an error.
func parseStrict(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("strict parse: %w", err)
	}
	return value, nil
}

// parseLenient accepts single-quoted or bare keys, trailing commas and
// comments by rewriting the text with jsonrepair before a strict parse. Only
// structurally complete text is handed to jsonrepair.
func parseLenient(text string) (any, error) {
	if err := checkComplete(text); err != nil {
		return nil, fmt.Errorf("lenient parse: %w", err)
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("lenient parse: %w", err)
	}

	var value any
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, fmt.Errorf("lenient parse: %w", err)
	}
	return value, nil
}

// recoverTruncated strict-parses the prefix of text ending at its last '}'.
func recoverTruncated(text string) (any, error) {
	end := strings.LastIndexByte(text, '}')
	if end < 0 {
		return nil, fmt.Errorf("truncation recovery: %w", ErrNoClosingBrace)
	}

	var value any
	if err := json.Unmarshal([]byte(text[:end+1]), &value); err != nil {
		return nil, fmt.Errorf("truncation recovery: %w", err)
	}
	return value, nil
}

// checkComplete scans text as a relaxed JSON document and reports whether every
// bracket is closed and every string terminated. Double and single quoted
// strings, line comments and block comments are recognised.
func checkComplete(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return errEmpty
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return errNotDocument
	}

	var (
		depth        int
		quote        byte
		escaped      bool
		lineComment  bool
		blockComment bool
	)

	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]

		switch {
		case lineComment:
			if c == '\n' {
				lineComment = false
			}
		case blockComment:
			if c == '*' && i+1 < len(trimmed) && trimmed[i+1] == '/' {
				blockComment = false
				i++
			}
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(trimmed) && trimmed[i+1] == '/':
			lineComment = true
			i++
		case c == '/' && i+1 < len(trimmed) && trimmed[i+1] == '*':
			blockComment = true
			i++
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected %q at offset %d", ErrIncomplete, c, i)
			}
		}
	}

	switch {
	case quote != 0:
		return fmt.Errorf("%w: unterminated string", ErrIncomplete)
	case blockComment:
		return fmt.Errorf("%w: unterminated comment", ErrIncomplete)
	case depth > 0:
		return fmt.Errorf("%w: %d unclosed bracket(s)", ErrIncomplete, depth)
	}
	return nil
}
