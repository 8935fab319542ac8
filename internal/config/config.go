// Package config loads pdfstruct settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingAPIKey is returned by RequireAPIKey when GEMINI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("config: GEMINI_API_KEY is not set")

// Config holds every setting read from the environment.
type Config struct {
	GeminiAPIKey        string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL       string `envconfig:"GEMINI_API_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiUploadBaseURL string `envconfig:"GEMINI_UPLOAD_BASE_URL" default:"https://generativelanguage.googleapis.com/upload/v1beta"`
	GeminiModel         string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-pro"`

	DocumentMode     string        `envconfig:"PDFSTRUCT_DOCUMENT_MODE" default:"auto"`
	InlineLimitBytes int64         `envconfig:"PDFSTRUCT_INLINE_LIMIT_BYTES" default:"20971520"`
	MaxUploadBytes   int64         `envconfig:"PDFSTRUCT_MAX_UPLOAD_BYTES" default:"52428800"`
	RequestTimeout   time.Duration `envconfig:"PDFSTRUCT_REQUEST_TIMEOUT" default:"120s"`
	MaxRetries       int           `envconfig:"PDFSTRUCT_MAX_RETRIES" default:"3"`
	// Empty means the built-in extraction prompt.
	DefaultPrompt string `envconfig:"PDFSTRUCT_DEFAULT_PROMPT"`

	HTTPAddr string `envconfig:"PDFSTRUCT_HTTP_ADDR" default:":8080"`

	LogFormat          string `envconfig:"PDFSTRUCT_LOG_FORMAT" default:"compact"`
	MiddlewareLogLevel string `envconfig:"PDFSTRUCT_MIDDLEWARE_LOG_LEVEL" default:"standard"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment without overriding variables already set, then
// populates a Config. A missing implicit .env is skipped; a named file that
// cannot be read is an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load env file: %w", err)
		}
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.DocumentMode {
	case "auto", "inline", "upload":
	default:
		return fmt.Errorf("config: PDFSTRUCT_DOCUMENT_MODE must be auto, inline or upload, got %q", c.DocumentMode)
	}
	if c.InlineLimitBytes <= 0 {
		return fmt.Errorf("config: PDFSTRUCT_INLINE_LIMIT_BYTES must be positive, got %d", c.InlineLimitBytes)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: PDFSTRUCT_MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: PDFSTRUCT_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	switch c.LogFormat {
	case "compact", "text", "json":
	default:
		return fmt.Errorf("config: PDFSTRUCT_LOG_FORMAT must be compact, text or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireAPIKey reports ErrMissingAPIKey when no Gemini key is configured.
// Only commands that call the model need one.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
