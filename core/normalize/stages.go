package normalize

import (
	"regexp"
	"strings"
)

// Stage is one named, pure text rewrite in the repair pipeline. Apply must not
// retain or mutate anything outside its argument.
type Stage struct {
	Name  string
	Apply func(text string) string
}

var (
	// Greedy: first '{' through the last '}' that follows it.
	blockPattern = regexp.MustCompile(`(?s)\{.*\}`)

	// A line holding only an opening fence (optionally tagged json) or a
	// closing fence.
	fenceLinePattern = regexp.MustCompile("(?mi)^[ \t]*```[ \t]*(?:json)?[ \t]*\r?$\n?")

	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyPattern       = regexp.MustCompile(`([{,]\s*)([A-Za-z0-9_]+)(\s*:)`)
	braceRunPattern      = regexp.MustCompile(`\}\s*\}`)
)

// DefaultStages returns the repair pipeline in the order it is applied. The
// returned slice is a fresh copy.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "isolate_block", Apply: isolateBlock},
		{Name: "strip_fences", Apply: stripFences},
		{Name: "strip_trailing_commas", Apply: stripTrailingCommas},
		{Name: "quote_bare_keys", Apply: quoteBareKeys},
		{Name: "collapse_duplicate_braces", Apply: collapseDuplicateBraces},
		// Key quoting and brace collapsing can expose new trailing commas.
		{Name: "strip_trailing_commas", Apply: stripTrailingCommas},
		{Name: "trim_leading_noise", Apply: trimBeforeFirstBrace},
	}
}

// isolateBlock keeps the span from the first '{' to the last '}', dropping any
// prose before or after it. Text without such a span is returned unchanged.
func isolateBlock(text string) string {
	if block := blockPattern.FindString(text); block != "" {
		return block
	}
	return text
}

// stripFences removes markdown code fence lines and trims the result.
func stripFences(text string) string {
	return strings.TrimSpace(fenceLinePattern.ReplaceAllString(text, ""))
}

// stripTrailingCommas drops a comma that is followed, ignoring whitespace, by
// a closing '}' or ']'.
func stripTrailingCommas(text string) string {
	return trailingCommaPattern.ReplaceAllString(text, "${1}")
}

// quoteBareKeys wraps identifier-like keys that directly follow '{' or ','
// in double quotes.
func quoteBareKeys(text string) string {
	return bareKeyPattern.ReplaceAllString(text, `${1}"${2}"${3}`)
}

// collapseDuplicateBraces folds a "}}" run (whitespace allowed between) into a
// single '}' while the text closes more objects than it opens. The rightmost
// run is folded first. Braces inside string literals are counted too.
func collapseDuplicateBraces(text string) string {
	surplus := strings.Count(text, "}") - strings.Count(text, "{")
	for ; surplus > 0; surplus-- {
		runs := braceRunPattern.FindAllStringIndex(text, -1)
		if len(runs) == 0 {
			break
		}
		last := runs[len(runs)-1]
		text = text[:last[0]] + "}" + text[last[1]:]
	}
	return text
}

// trimBeforeFirstBrace drops anything before the first '{', if there is one.
func trimBeforeFirstBrace(text string) string {
	if index := strings.IndexByte(text, '{'); index > 0 {
		return text[index:]
	}
	return text
}
