// Package middleware provides the built-in middlewares for the inference
// client. Each New* function returns a [client.MiddlewareConfig] for
// [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds a call with context.WithTimeout.
//   - [NewRetryMiddleware] retries transient HTTP failures (429, 5xx) with
//     exponential backoff and jitter.
//   - [NewLoggingMiddleware] logs each call through slog at one of three
//     verbosity levels.
//
// Middlewares run outermost-first. With
//
//	client.WithMiddleware(
//	    middleware.NewTimeoutMiddleware(2*time.Minute),
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 3}),
//	    middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	)
//
// a request travels Timeout → Retry → Logging → Provider, so the timeout
// covers every retry and each attempt is logged separately.
package middleware
