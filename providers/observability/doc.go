// Package observability defines the tracing, metrics and logging interfaces
// used across pdfstruct, plus the attribute keys, span names and metric
// names in semconv.go.
//
// [Provider] composes [Tracer], [Metrics] and [Logger]. Implementations live
// in subpackages (see the slog subpackage) and can be mixed with [Compose].
// An active [Provider] and [Span] travel through a [context.Context] via
// [ContextWithObserver] and [ContextWithSpan], and are read back with
// [ObserverFromContext] and [SpanFromContext].
package observability
