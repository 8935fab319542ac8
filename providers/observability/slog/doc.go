// Package slog implements observability.Provider on top of log/slog.
//
// Spans are logged once, when they end. The record leads with the document
// mode, normalize tier and error kind when the span carries them, followed by
// the status and remaining attributes; failed spans log at Warn. Counters are
// kept in memory per label set and read back with CounterValue, which tests
// rely on. For Prometheus export, combine this Observer's tracer and logger
// with internal/metrics through observability.Compose.
//
// NewLogger builds the underlying logger in one of three formats: compact
// single-line output for terminals (CompactHandler), slog text, or slog JSON.
package slog
