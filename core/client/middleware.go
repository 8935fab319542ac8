package client

import (
	"context"

	"github.com/leofalp/pdfstruct/providers/ai"
)

// SendFunc sends one request to the provider and returns the completed
// response. It is the unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc in the chain. Middlewares are applied
// outermost-first: the first one in the slice runs first.
type Middleware func(next SendFunc) SendFunc

// MiddlewareConfig carries a middleware together with its identity in the
// chain. Send is required; a nil Send makes [New] fail.
type MiddlewareConfig struct {
	Send Middleware
}

// buildSendChain wraps a direct provider call with middlewares so that
// middlewares[0] becomes the outermost wrapper.
func buildSendChain(provider ai.Provider, middlewares []MiddlewareConfig) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i].Send(chain)
	}

	return chain
}
