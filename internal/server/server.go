// Package server exposes extraction and normalization over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leofalp/pdfstruct/core/extract"
	"github.com/leofalp/pdfstruct/core/normalize"
	"github.com/leofalp/pdfstruct/internal/render"
	"github.com/leofalp/pdfstruct/providers/ai/gemini"
)

const (
	// multipartOverhead is allowed on top of the document size limit for
	// form boundaries and the prompt field.
	multipartOverhead int64 = 1 << 20
	maxNormalizeBody  int64 = 10 << 20
	shutdownTimeout         = 10 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Extractor is the part of extract.Extractor the server uses.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (*extract.Extraction, error)
	NormalizeText(ctx context.Context, raw string) normalize.Result
}

// Config holds the server's collaborators.
type Config struct {
	Extractor Extractor
	// Metrics serves GET /metrics when set.
	Metrics        http.Handler
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server routes HTTP requests to an Extractor.
type Server struct {
	extractor Extractor
	maxUpload int64
	logger    *slog.Logger
	engine    *gin.Engine
}

// New builds the router.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = extract.DefaultMaxDocumentSize
	}

	s := &Server{
		extractor: cfg.Extractor,
		maxUpload: maxUpload,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := router.Group("/v1")
	v1.POST("/extract", s.handleExtract)
	v1.POST("/normalize", s.handleNormalize)

	s.engine = router
	return s
}

// Handler returns the router, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleExtract(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}

	mode, err := extract.ParseMode(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	extraction, err := s.extractor.Extract(c.Request.Context(), extract.Request{
		Document: extract.Document{Name: fileHeader.Filename, Data: data},
		Prompt:   c.PostForm("prompt"),
		Mode:     mode,
	})
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("extraction failed", "error", err, "status", status)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, render.FromExtraction(extraction))
}

func (s *Server) handleNormalize(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNormalizeBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body exceeds size limit"})
		return
	}

	result := s.extractor.NormalizeText(c.Request.Context(), string(body))
	c.JSON(http.StatusOK, render.NewEnvelope(result))
}

// statusForError maps extraction errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, extract.ErrEmptyDocument), errors.Is(err, extract.ErrUploadUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gemini.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// requestLogger tags each request with an ID, taken from X-Request-ID when
// the client sends one, and logs it once the handler returns.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()
		logger.Info("http request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
