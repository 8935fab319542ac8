package gemini

import (
	"testing"
	"time"

	"github.com/leofalp/pdfstruct/providers/ai"
)

func TestRequestToGemini_PartsAndRoles(t *testing.T) {
	req := requestToGemini(ai.ChatRequest{
		SystemPrompt: "answer in JSON",
		Messages: []ai.Message{
			{Role: ai.RoleUser, ContentParts: []ai.ContentPart{
				ai.NewDocumentPartFromURI("application/pdf", "https://files/abc"),
				ai.NewTextPart("extract"),
			}},
			{Role: ai.RoleAssistant, Content: "{}"},
			{Role: ai.RoleUser, Content: ""},
		},
	})

	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "answer in JSON" {
		t.Errorf("expected system instruction, got %+v", req.SystemInstruction)
	}
	if len(req.Contents) != 2 {
		t.Fatalf("expected empty message to be skipped, got %d contents", len(req.Contents))
	}
	if fd := req.Contents[0].Parts[0].FileData; fd == nil || fd.FileURI != "https://files/abc" || fd.MimeType != "application/pdf" {
		t.Errorf("expected fileData part, got %+v", req.Contents[0].Parts[0])
	}
	if req.Contents[0].Parts[0].InlineData != nil {
		t.Error("URI document must not also carry inline data")
	}
	if req.Contents[1].Role != "model" {
		t.Errorf("expected assistant mapped to model, got %q", req.Contents[1].Role)
	}
}

func TestBuildGenerationConfig(t *testing.T) {
	if gc := buildGenerationConfig(nil, nil); gc != nil {
		t.Errorf("expected nil config, got %+v", gc)
	}

	gc := buildGenerationConfig(&ai.GenerationConfig{Temperature: 0.5, MaxOutputTokens: 8192}, &ai.ResponseFormat{Type: "json_object"})
	if gc.Temperature == nil || *gc.Temperature != 0.5 {
		t.Errorf("unexpected temperature %v", gc.Temperature)
	}
	if gc.MaxOutputTokens == nil || *gc.MaxOutputTokens != 8192 {
		t.Errorf("unexpected max tokens %v", gc.MaxOutputTokens)
	}
	if gc.TopP != nil {
		t.Errorf("expected TopP unset, got %v", *gc.TopP)
	}
	if gc.ResponseMimeType != "application/json" {
		t.Errorf("expected JSON mime type, got %q", gc.ResponseMimeType)
	}
}

func TestGeminiToGeneric_DropsThoughtParts(t *testing.T) {
	resp := geminiToGeneric(generateContentResponse{
		Candidates: []candidate{{
			Content: &content{Parts: []part{
				{Text: "thinking about tables", Thought: true},
				{Text: `{"pages": `},
				{Text: `[]}`},
			}},
			FinishReason: "MAX_TOKENS",
		}},
	})

	if resp.Content != `{"pages": []}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.FinishReason != ai.FinishReasonLength {
		t.Errorf("expected length finish reason, got %q", resp.FinishReason)
	}
	if resp.Id == "" {
		t.Error("expected a generated id when the response has none")
	}
}

func TestGeminiToGeneric_NoCandidates(t *testing.T) {
	resp := geminiToGeneric(generateContentResponse{})
	if resp.FinishReason != "error" || resp.Refusal != "" {
		t.Errorf("unexpected response %+v", resp)
	}

	resp = geminiToGeneric(generateContentResponse{PromptFeedback: &promptFeedback{BlockReason: "OTHER"}})
	if resp.FinishReason != ai.FinishReasonContentFilter || resp.Refusal != "OTHER" {
		t.Errorf("unexpected blocked response %+v", resp)
	}
}

func TestMapFinishReason(t *testing.T) {
	tests := map[string]string{
		"STOP":       ai.FinishReasonStop,
		"MAX_TOKENS": ai.FinishReasonLength,
		"SAFETY":     ai.FinishReasonContentFilter,
		"RECITATION": ai.FinishReasonContentFilter,
		"OTHER":      ai.FinishReasonStop,
		"":           ai.FinishReasonStop,
	}
	for in, want := range tests {
		if got := mapFinishReason(in); got != want {
			t.Errorf("mapFinishReason(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileFromResource(t *testing.T) {
	file := fileFromResource(fileResource{
		Name:           "files/abc",
		URI:            "https://generativelanguage.googleapis.com/v1beta/files/abc",
		MimeType:       "application/pdf",
		SizeBytes:      "2048",
		State:          fileStateActive,
		ExpirationTime: "2026-10-20T12:00:00.123456Z",
	})

	if file.SizeBytes != 2048 {
		t.Errorf("expected size 2048, got %d", file.SizeBytes)
	}
	want := time.Date(2026, 10, 20, 12, 0, 0, 123456000, time.UTC)
	if !file.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, file.ExpiresAt)
	}
	if file.Name != "files/abc" || file.State != fileStateActive {
		t.Errorf("unexpected file %+v", file)
	}
}
