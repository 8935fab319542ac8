package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/pdfstruct/internal/utils"
	"github.com/leofalp/pdfstruct/providers/ai"
)

// requestToGemini converts an ai.ChatRequest to a Gemini generateContentRequest.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	req := generateContentRequest{
		Contents:         buildContents(request.Messages),
		GenerationConfig: buildGenerationConfig(request.GenerationConfig, request.ResponseFormat),
	}

	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		}
	}

	return req
}

// buildContents maps messages to Gemini contents. Assistant turns become the
// "model" role and stray system messages are sent as user text.
func buildContents(messages []ai.Message) []content {
	var contents []content

	for _, msg := range messages {
		var parts []part
		if len(msg.ContentParts) > 0 {
			parts = contentPartsToGeminiParts(msg.ContentParts)
		} else if msg.Content != "" {
			parts = []part{{Text: msg.Content}}
		}
		if len(parts) == 0 {
			continue
		}

		role := "user"
		if msg.Role == ai.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: parts})
	}

	return contents
}

// contentPartsToGeminiParts converts generic parts. A document with a URI is
// sent as fileData, otherwise as inlineData.
func contentPartsToGeminiParts(contentParts []ai.ContentPart) []part {
	var parts []part
	for _, contentPart := range contentParts {
		switch contentPart.Type {
		case ai.ContentTypeText:
			parts = append(parts, part{Text: contentPart.Text})

		case ai.ContentTypeDocument:
			if contentPart.Document == nil {
				continue
			}
			document := contentPart.Document
			if document.URI != "" {
				parts = append(parts, part{FileData: &fileData{MimeType: document.MimeType, FileURI: document.URI}})
			} else {
				parts = append(parts, part{InlineData: &inlineData{MimeType: document.MimeType, Data: document.Data}})
			}
		}
	}
	return parts
}

func buildGenerationConfig(cfg *ai.GenerationConfig, respFmt *ai.ResponseFormat) *generationConfig {
	if cfg == nil && respFmt == nil {
		return nil
	}

	gc := &generationConfig{}

	if cfg != nil {
		if cfg.Temperature > 0 {
			gc.Temperature = utils.Ptr(float64(cfg.Temperature))
		}
		if cfg.TopP > 0 {
			gc.TopP = utils.Ptr(float64(cfg.TopP))
		}
		if cfg.MaxOutputTokens > 0 {
			gc.MaxOutputTokens = utils.Ptr(cfg.MaxOutputTokens)
		}
	}

	if respFmt != nil && respFmt.Type == "json_object" {
		gc.ResponseMimeType = "application/json"
	}

	return gc
}

// geminiToGeneric converts a Gemini generateContentResponse to ai.ChatResponse.
// Thinking parts are dropped and the remaining text parts are concatenated
// without separators, matching the SDKs' response.text.
func geminiToGeneric(resp generateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:    resp.ResponseID,
		Model: resp.ModelVersion,
	}
	if result.Id == "" {
		result.Id = "gemini-" + uuid.NewString()
	}

	if len(resp.Candidates) == 0 {
		result.FinishReason = "error"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.FinishReason = ai.FinishReasonContentFilter
			result.Refusal = resp.PromptFeedback.BlockReason
		}
		return result
	}

	candidate := resp.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		var text strings.Builder
		for _, p := range candidate.Content.Parts {
			if p.Text != "" && !p.Thought {
				text.WriteString(p.Text)
			}
		}
		result.Content = text.String()
	}

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
			ReasoningTokens:  resp.UsageMetadata.ThoughtsTokenCount,
			CachedTokens:     resp.UsageMetadata.CachedContentTokenCount,
		}
	}

	return result
}

// mapFinishReason converts Gemini finish reason to ai.ChatResponse finish reason.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return ai.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ai.FinishReasonContentFilter
	default:
		return ai.FinishReasonStop
	}
}

// fileFromResource converts a Files API resource to the generic ai.File.
func fileFromResource(resource fileResource) *ai.File {
	file := &ai.File{
		Name:     resource.Name,
		URI:      resource.URI,
		MimeType: resource.MimeType,
		State:    resource.State,
	}
	if resource.SizeBytes != "" {
		_, _ = fmt.Sscan(resource.SizeBytes, &file.SizeBytes)
	}
	if resource.ExpirationTime != "" {
		if expires, err := time.Parse(time.RFC3339Nano, resource.ExpirationTime); err == nil {
			file.ExpiresAt = expires
		}
	}
	return file
}
