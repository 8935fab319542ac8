package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/pdfstruct/providers/ai"
	"github.com/leofalp/pdfstruct/providers/observability"
)

// Client sends requests to a provider through a fixed middleware chain. It
// holds no per-request state and is safe for concurrent use.
type Client struct {
	provider     ai.Provider
	defaultModel string
	send         SendFunc
}

// Option configures a Client.
type Option func(*options)

type options struct {
	middlewares  []MiddlewareConfig
	observer     observability.Provider
	defaultModel string
}

// WithMiddleware appends middlewares to the chain. The first middleware
// across all calls is the outermost.
func WithMiddleware(middlewares ...MiddlewareConfig) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// WithObserver enables spans, metrics and logs for every call. The
// observability middleware is placed outside all others so it sees the final
// outcome after retries.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(o *options) {
		o.defaultModel = model
	}
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	for i, middleware := range o.middlewares {
		if middleware.Send == nil {
			return nil, fmt.Errorf("client: middleware %d has a nil Send function", i)
		}
	}

	middlewares := o.middlewares
	if o.observer != nil {
		middlewares = append([]MiddlewareConfig{NewObservabilityMiddleware(o.observer, o.defaultModel)}, middlewares...)
	}

	return &Client{
		provider:     provider,
		defaultModel: o.defaultModel,
		send:         buildSendChain(provider, middlewares),
	}, nil
}

// Send runs request through the middleware chain. An empty request model is
// filled with the client's default model.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.defaultModel
	}
	return c.send(ctx, request)
}

// Provider returns the underlying provider, for optional interfaces such as
// ai.FileUploader.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// DefaultModel returns the model used for requests that do not name one.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}
