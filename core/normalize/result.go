package normalize

// Tier identifies which parse attempt produced a document.
type Tier int

const (
	// TierNone means no attempt succeeded; the result is unparseable.
	TierNone Tier = iota
	// TierStrict is a standard JSON parse of the repaired text.
	TierStrict
	// TierLenient is a parse under a relaxed grammar (single-quoted or bare
	// keys, trailing commas, comments).
	TierLenient
	// TierTruncation is a strict parse of the prefix ending at the last '}'.
	TierTruncation
)

// String returns the lowercase tier name used in logs, metrics and the HTTP API.
func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierLenient:
		return "lenient"
	case TierTruncation:
		return "truncation"
	default:
		return "none"
	}
}

// Result is the outcome of normalizing one model response.
//
// A parsed result has Tier != TierNone and Value holds the document
// (map[string]any, []any or a scalar as produced by encoding/json). An
// unparseable result has Tier == TierNone and Err holds the error of the final
// parse attempt. Raw is always the untouched input, never a repaired string.
type Result struct {
	Value any
	Tier  Tier
	Raw   string
	Err   error
}

// Parsed reports whether some tier produced a document.
func (r Result) Parsed() bool {
	return r.Tier != TierNone
}

// LastError returns the message of the final parse error, or "" when parsed.
func (r Result) LastError() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func parsed(raw string, value any, tier Tier) Result {
	return Result{Value: value, Tier: tier, Raw: raw}
}

func unparseable(raw string, err error) Result {
	return Result{Tier: TierNone, Raw: raw, Err: err}
}
