package client

import (
	"context"
	"time"

	"github.com/leofalp/pdfstruct/providers/ai"
	"github.com/leofalp/pdfstruct/providers/observability"
)

// NewObservabilityMiddleware returns a middleware that wraps each call in a
// span, records latency, request and token metrics, and logs the outcome.
// The span and observer are stored in the context so providers can reach
// them via observability.SpanFromContext and ObserverFromContext.
//
// defaultModel labels spans and metrics when the request has no model.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) MiddlewareConfig {
	return MiddlewareConfig{Send: buildObsSend(observer, defaultModel)}
}

func buildObsSend(observer observability.Provider, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)

			ctx, span := observer.StartSpan(ctx, observability.SpanInference,
				observability.String(observability.AttrLLMModel, model),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			observer.Histogram(observability.MetricInferenceDuration).Record(ctx, elapsed.Seconds(),
				observability.String(observability.AttrLLMModel, model),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")
				span.End()

				observer.Error(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Counter(observability.MetricInferenceRequests).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
				)

				return nil, err
			}

			recordObsSuccess(ctx, span, observer, response, elapsed, model)
			return response, nil
		}
	}
}

// recordObsSuccess records the success-path metrics, span attributes and log
// entry, then ends the span.
func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	response *ai.ChatResponse,
	elapsed time.Duration,
	model string,
) {
	observer.Counter(observability.MetricInferenceRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
	)

	logAttrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, model),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
		observability.Int(observability.AttrResponseLength, len(response.Content)),
	}

	if response.Usage != nil {
		observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(response.Usage.PromptTokens),
			observability.String(observability.AttrTokenType, "prompt"),
		)
		observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(response.Usage.CompletionTokens),
			observability.String(observability.AttrTokenType, "completion"),
		)

		span.SetAttributes(
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
		)
		logAttrs = append(logAttrs,
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
		)
	}

	observer.Info(ctx, "llm send completed", logAttrs...)

	span.SetStatus(observability.StatusOK, "success")
	span.End()
}

// effectiveModel returns the request-level model when set, falling back to
// the client's default. Both empty is valid; the provider then chooses.
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return defaultModel
}
