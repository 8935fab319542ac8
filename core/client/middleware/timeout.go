package middleware

import (
	"context"
	"time"

	"github.com/leofalp/pdfstruct/core/client"
	"github.com/leofalp/pdfstruct/providers/ai"
)

// NewTimeoutMiddleware bounds every provider call with context.WithTimeout.
// A caller context with a shorter deadline still wins. A non-positive
// timeout leaves the context untouched.
//
// Placed outside the retry middleware, the deadline covers all attempts and
// their backoff; placed inside, it applies per attempt.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{Send: buildSendTimeout(timeout)}
}

func buildSendTimeout(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			if timeout <= 0 {
				return next(ctx, request)
			}

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
