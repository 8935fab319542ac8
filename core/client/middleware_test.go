package client

import (
	"context"
	"testing"

	"github.com/leofalp/pdfstruct/providers/ai"
)

func recordingMiddleware(name string, order *[]string) MiddlewareConfig {
	return MiddlewareConfig{Send: func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			*order = append(*order, name)
			return next(ctx, request)
		}
	}}
}

func TestBuildSendChain_EmptyMiddlewares(t *testing.T) {
	resp, err := buildSendChain(&mockProvider{}, nil)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("expected 'test response', got %q", resp.Content)
	}
}

func TestBuildSendChain_OutermostFirst(t *testing.T) {
	var order []string
	chain := buildSendChain(&mockProvider{}, []MiddlewareConfig{
		recordingMiddleware("timeout", &order),
		recordingMiddleware("retry", &order),
		recordingMiddleware("logging", &order),
	})

	if _, err := chain(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"timeout", "retry", "logging"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %v", len(expected), order)
	}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("position %d: expected %q, got %q", i, name, order[i])
		}
	}
}

func TestBuildSendChain_ShortCircuit(t *testing.T) {
	provider := &mockProvider{}
	cached := MiddlewareConfig{Send: func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: "cached"}, nil
		}
	}}

	resp, err := buildSendChain(provider, []MiddlewareConfig{cached})(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "cached" || provider.calls != 0 {
		t.Errorf("expected short circuit, got %q after %d provider calls", resp.Content, provider.calls)
	}
}
