package normalize

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustStrict(t *testing.T, text string) any {
	t.Helper()
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		t.Fatalf("test fixture %q is not valid JSON: %v", text, err)
	}
	return value
}

// TestNormalize_ValidJSON_MatchesStrictParse verifies that already valid input
// passes through every repair stage unchanged and is parsed by the strict tier.
func TestNormalize_ValidJSON_MatchesStrictParse(t *testing.T) {
	inputs := []string{
		`{"a": 1}`,
		`{"pages": [{"number": 1, "sections": [{"title": "Intro", "paragraphs": ["x"]}]}]}`,
		`{"a": {"b": {"c": {}}}}`,
		`{"empty": {}, "list": [], "nil": null, "flag": false}`,
		`[1, 2, 3]`,
		`"just a string"`,
		`42`,
		"{\n  \"title\": \"Annual report\",\n  \"tables\": [\n    {\"rows\": [[1, 2], [3, 4]]}\n  ]\n}",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result := Normalize(input)
			if !result.Parsed() {
				t.Fatalf("Normalize() unparseable: %v", result.Err)
			}
			if result.Tier != TierStrict {
				t.Errorf("Tier = %s, want strict", result.Tier)
			}
			if want := mustStrict(t, input); !reflect.DeepEqual(result.Value, want) {
				t.Errorf("Value = %#v, want %#v", result.Value, want)
			}
			if repaired := New().Repair(input); strings.TrimSpace(repaired) != strings.TrimSpace(input) {
				t.Errorf("Repair() changed valid input: %q", repaired)
			}
		})
	}
}

func TestNormalize_RepairsCommonModelOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantTier Tier
	}{
		{
			name:     "trailing comma in object",
			input:    `{"a": 1, "b": 2,}`,
			want:     `{"a": 1, "b": 2}`,
			wantTier: TierStrict,
		},
		{
			name:     "trailing commas in nested array and object",
			input:    `{"a": [1, 2,], "b": {"c": 3,},}`,
			want:     `{"a": [1, 2], "b": {"c": 3}}`,
			wantTier: TierStrict,
		},
		{
			name:     "bare key",
			input:    `{foo: 1}`,
			want:     `{"foo": 1}`,
			wantTier: TierStrict,
		},
		{
			name:     "fenced block",
			input:    "```json\n{\"a\": 1}\n```",
			want:     `{"a": 1}`,
			wantTier: TierStrict,
		},
		{
			name:     "fenced block with prose",
			input:    "Here is the extracted structure:\n\n```json\n{\"pages\": [{\"number\": 1}]}\n```\n\nLet me know if you need anything else.",
			want:     `{"pages": [{"number": 1}]}`,
			wantTier: TierStrict,
		},
		{
			name:     "fenced top-level array",
			input:    "```json\n[{\"a\": 1}]\n```",
			want:     `[{"a": 1}]`,
			wantTier: TierStrict,
		},
		{
			name:     "duplicated closing brace",
			input:    `{"a": {"b": 1}}}`,
			want:     `{"a": {"b": 1}}`,
			wantTier: TierStrict,
		},
		{
			name:     "bare keys, trailing commas and duplicated brace together",
			input:    "{\n  title: \"Q3\",\n  sections: [\n    {heading: \"Intro\",},\n  ],\n}}",
			want:     `{"title": "Q3", "sections": [{"heading": "Intro"}]}`,
			wantTier: TierStrict,
		},
		{
			name:     "single quoted keys and values",
			input:    `{'title': 'Report', 'pages': 3}`,
			want:     `{"title": "Report", "pages": 3}`,
			wantTier: TierLenient,
		},
		{
			name:     "block comment",
			input:    `{"a": 1 /* page count */}`,
			want:     `{"a": 1}`,
			wantTier: TierLenient,
		},
		{
			name:     "extra content after a complete object",
			input:    `{"a": 1}, "b": 2`,
			want:     `{"a": 1}`,
			wantTier: TierStrict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if !result.Parsed() {
				t.Fatalf("Normalize() unparseable: %v (repaired: %q)", result.Err, New().Repair(tt.input))
			}
			if result.Tier != tt.wantTier {
				t.Errorf("Tier = %s, want %s", result.Tier, tt.wantTier)
			}
			if want := mustStrict(t, tt.want); !reflect.DeepEqual(result.Value, want) {
				t.Errorf("Value = %#v, want %#v", result.Value, want)
			}
			if result.Raw != tt.input {
				t.Errorf("Raw = %q, want original input", result.Raw)
			}
			if result.Err != nil {
				t.Errorf("Err = %v, want nil", result.Err)
			}
		})
	}
}

// TestNormalize_Unparseable_KeepsOriginalText verifies that failures carry the
// untouched input and the error of the truncation-recovery tier.
func TestNormalize_Unparseable_KeepsOriginalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: ErrNoClosingBrace,
		},
		{
			name:    "whitespace only",
			input:   "  \n\t ",
			wantErr: ErrNoClosingBrace,
		},
		{
			name:    "truncated after a complete key",
			input:   `{"a": 1, "b": 2`,
			wantErr: ErrNoClosingBrace,
		},
		{
			name:    "truncated inside a fence",
			input:   "```json\n{\"a\": [1, 2\n```",
			wantErr: ErrNoClosingBrace,
		},
		{
			name:    "prose refusal",
			input:   "I could not read the document.",
			wantErr: ErrNoClosingBrace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if result.Parsed() {
				t.Fatalf("Normalize() parsed %#v, want unparseable", result.Value)
			}
			if result.Tier != TierNone {
				t.Errorf("Tier = %s, want none", result.Tier)
			}
			if result.Raw != tt.input {
				t.Errorf("Raw = %q, want %q", result.Raw, tt.input)
			}
			if !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", result.Err, tt.wantErr)
			}
			if result.LastError() == "" {
				t.Error("LastError() is empty")
			}
			if result.Value != nil {
				t.Errorf("Value = %#v, want nil", result.Value)
			}
		})
	}
}

// TestNormalize_TruncatedButBraced_ReportsTruncationError verifies that when
// the text has a closing brace but still cannot be parsed, the surfaced error
// comes from the truncation-recovery attempt.
func TestNormalize_TruncatedButBraced_ReportsTruncationError(t *testing.T) {
	result := Normalize(`{"a": {"b": 1}, "c": [1, 2`)
	if result.Parsed() {
		t.Fatalf("Normalize() parsed %#v, want unparseable", result.Value)
	}
	if !strings.HasPrefix(result.LastError(), "truncation recovery:") {
		t.Errorf("LastError() = %q, want truncation recovery error", result.LastError())
	}
}

func TestRecoverTruncated(t *testing.T) {
	value, err := recoverTruncated(`{"a": 1}, "b": 2`)
	if err != nil {
		t.Fatalf("recoverTruncated() error = %v", err)
	}
	if want := mustStrict(t, `{"a": 1}`); !reflect.DeepEqual(value, want) {
		t.Errorf("recoverTruncated() = %#v, want %#v", value, want)
	}

	if _, err := recoverTruncated(`{"a": 1`); !errors.Is(err, ErrNoClosingBrace) {
		t.Errorf("recoverTruncated() error = %v, want ErrNoClosingBrace", err)
	}
}

func TestCheckComplete(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"balanced object", `{"a": [1, {"b": 2}]}`, false},
		{"brace inside string", `{"a": "}{"}`, false},
		{"escaped quote", `{"a": "say \"hi\""}`, false},
		{"single quoted string", `{'a': 'it is'}`, false},
		{"line comment", "{\"a\": 1 // note }\n}", false},
		{"block comment", `{"a": 1 /* } */}`, false},
		{"unclosed object", `{"a": 1`, true},
		{"unclosed array", `[1, 2`, true},
		{"unterminated string", `{"a": "b}`, true},
		{"unterminated comment", `{"a": 1} /* x`, true},
		{"surplus closer", `{"a": 1}}`, true},
		{"empty", "", true},
		{"not a document", "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkComplete(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkComplete() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestNormalize_Idempotent verifies that repeated calls on the same input give
// identical results.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		`{"a": 1}`,
		`{foo: [1, 2,],}`,
		`{'a': 'b'}`,
		`{"a": 1, "b": 2`,
		"```json\n{\"x\": true}\n```",
	}

	for _, input := range inputs {
		first := Normalize(input)
		second := Normalize(input)
		if !reflect.DeepEqual(first.Value, second.Value) || first.Tier != second.Tier ||
			first.Raw != second.Raw || first.LastError() != second.LastError() {
			t.Errorf("Normalize(%q) not idempotent: %+v vs %+v", input, first, second)
		}
	}
}

// TestNormalize_BraceRunInsideString_IsCorrupted pins the documented behaviour
// of the brace-collapsing heuristic: braces inside string literals are counted,
// so once a real duplicated closer sends the text through the stage, a "}}"
// inside a value is folded too.
func TestNormalize_BraceRunInsideString_IsCorrupted(t *testing.T) {
	result := Normalize(`{"note": "use }} here"}}`)
	if !result.Parsed() {
		t.Fatalf("Normalize() unparseable: %v", result.Err)
	}
	want := map[string]any{"note": "use } here"}
	if !reflect.DeepEqual(result.Value, want) {
		t.Errorf("Value = %#v, want the corrupted %#v", result.Value, want)
	}
}

// TestRepair_FenceLineInsideString_IsRemoved pins the documented behaviour of
// fence stripping: a fence on its own line is removed even inside a string.
func TestRepair_FenceLineInsideString_IsRemoved(t *testing.T) {
	got := New().Repair("{\"code\": \"a\n```\nb\"}")
	want := "{\"code\": \"a\nb\"}"
	if got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}

// TestRepair_CommaColonInsideString_IsQuoted pins the documented behaviour of
// key quoting on a string value that contains ", word:".
func TestRepair_CommaColonInsideString_IsQuoted(t *testing.T) {
	got := New().Repair(`{"time": "at 10, note: late"}`)
	want := `{"time": "at 10, "note": late"}`
	if got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}

func TestNormalize_InvalidUTF8_DoesNotPanic(t *testing.T) {
	input := "{\"a\": \"\xff\xfe\"}"
	result := Normalize(input)
	if !result.Parsed() {
		t.Fatalf("Normalize() unparseable: %v", result.Err)
	}
	if result.Raw != input {
		t.Errorf("Raw was modified")
	}
}

// TestNormalizer_PanickingStage_BecomesUnparseable verifies that a panic in a
// custom stage is converted to an unparseable result.
func TestNormalizer_PanickingStage_BecomesUnparseable(t *testing.T) {
	n := New(WithStages(Stage{
		Name:  "boom",
		Apply: func(string) string { panic("boom") },
	}))

	result := n.Normalize(`{"a": 1,}`)
	if result.Parsed() {
		t.Fatal("expected unparseable result")
	}
	if !strings.Contains(result.LastError(), "panicked") {
		t.Errorf("LastError() = %q, want panic message", result.LastError())
	}
	if result.Raw != `{"a": 1,}` {
		t.Errorf("Raw = %q", result.Raw)
	}
}

// TestNormalize_ValidStringsSurviveRepairHeuristics verifies that valid JSON
// whose string values look like repair targets is returned unchanged, with or
// without surrounding prose and fences.
func TestNormalize_ValidStringsSurviveRepairHeuristics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "comma and colon inside a value",
			input: `{"summary": "Revenue grew, Q3: up 10%"}`,
			want:  `{"summary": "Revenue grew, Q3: up 10%"}`,
		},
		{
			name:  "fenced with prose",
			input: "Result:\n```json\n{\"summary\": \"Revenue grew, Q3: up 10%\"}\n```\nDone.",
			want:  `{"summary": "Revenue grew, Q3: up 10%"}`,
		},
		{
			name:  "brace run inside a value",
			input: `{"note": "use }} here"}`,
			want:  `{"note": "use }} here"}`,
		},
		{
			name:  "comma before bracket inside a value",
			input: `{"expr": "f(a, ]", "ok": true}`,
			want:  `{"expr": "f(a, ]", "ok": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if !result.Parsed() {
				t.Fatalf("Normalize() unparseable: %v", result.Err)
			}
			if result.Tier != TierStrict {
				t.Errorf("Tier = %s, want strict", result.Tier)
			}
			if want := mustStrict(t, tt.want); !reflect.DeepEqual(result.Value, want) {
				t.Errorf("Value = %#v, want %#v", result.Value, want)
			}
		})
	}
}

// TestNormalize_CommaColonInBareKeyedInput_IsUnparseable pins key quoting on
// input that needs it: the string value is split and nothing parses.
func TestNormalize_CommaColonInBareKeyedInput_IsUnparseable(t *testing.T) {
	result := Normalize(`{note: "at 10, Q3: late"}`)
	if result.Parsed() {
		t.Fatalf("Normalize() parsed %#v, want unparseable", result.Value)
	}
	if result.Raw != `{note: "at 10, Q3: late"}` {
		t.Errorf("Raw = %q", result.Raw)
	}
}

func TestNormalizer_WithStages_ReplacesPipeline(t *testing.T) {
	n := New(WithStages())
	if len(n.Stages()) != 0 {
		t.Fatalf("Stages() = %d, want 0", len(n.Stages()))
	}

	// Without repair stages the fence is left in place; the lenient tier
	// rejects it and truncation recovery cannot parse the fenced prefix.
	result := n.Normalize("```json\n{\"a\": 1}\n```")
	if result.Parsed() {
		t.Errorf("expected unparseable result without stages, got %#v", result.Value)
	}
}

func TestTier_String(t *testing.T) {
	tests := map[Tier]string{
		TierNone:       "none",
		TierStrict:     "strict",
		TierLenient:    "lenient",
		TierTruncation: "truncation",
		Tier(99):       "none",
	}
	for tier, want := range tests {
		if got := tier.String(); got != want {
			t.Errorf("Tier(%d).String() = %q, want %q", int(tier), got, want)
		}
	}
}
