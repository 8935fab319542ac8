package main

import (
	"io"
	"log/slog"

	"github.com/leofalp/pdfstruct/core/client"
	"github.com/leofalp/pdfstruct/core/client/middleware"
	"github.com/leofalp/pdfstruct/core/extract"
	"github.com/leofalp/pdfstruct/internal/config"
	"github.com/leofalp/pdfstruct/internal/metrics"
	"github.com/leofalp/pdfstruct/providers/ai/gemini"
	"github.com/leofalp/pdfstruct/providers/observability"
	slogobs "github.com/leofalp/pdfstruct/providers/observability/slog"
)

// app is the wired object graph shared by all commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Registry
	extractor *extract.Extractor
}

func loadConfig(envFile string) (*config.Config, error) {
	if envFile == "" {
		return config.Load()
	}
	return config.Load(envFile)
}

// newApp wires provider, middleware, observability and extractor from cfg.
// Logs go to logOutput.
func newApp(cfg *config.Config, logOutput io.Writer) (*app, error) {
	logger := slogobs.NewLogger(logOutput, slogobs.GetLogLevelFromEnv(), slogobs.ParseFormat(cfg.LogFormat))
	registry := metrics.New()

	slogObserver := slogobs.New(logger)
	observer := observability.Compose(slogObserver, registry, slogObserver)

	provider := gemini.New(gemini.Config{
		APIKey:        cfg.GeminiAPIKey,
		BaseURL:       cfg.GeminiBaseURL,
		UploadBaseURL: cfg.GeminiUploadBaseURL,
		Model:         cfg.GeminiModel,
	})

	// NewRetryMiddleware treats 0 as "use the default"; a negative value
	// disables retries.
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}

	c, err := client.New(provider,
		client.WithDefaultModel(cfg.GeminiModel),
		client.WithObserver(observer),
		client.WithMiddleware(
			middleware.NewTimeoutMiddleware(cfg.RequestTimeout),
			middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: maxRetries}),
			middleware.NewLoggingMiddleware(logger, middleware.ParseLogLevel(cfg.MiddlewareLogLevel)),
		),
	)
	if err != nil {
		return nil, err
	}

	mode, err := extract.ParseMode(cfg.DocumentMode)
	if err != nil {
		return nil, err
	}

	extractor := extract.New(c,
		extract.WithDefaultPrompt(cfg.DefaultPrompt),
		extract.WithMode(mode),
		extract.WithInlineLimit(cfg.InlineLimitBytes),
		extract.WithMaxDocumentSize(cfg.MaxUploadBytes),
		extract.WithRequestTimeout(cfg.RequestTimeout),
		extract.WithObserver(observer),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   registry,
		extractor: extractor,
	}, nil
}
