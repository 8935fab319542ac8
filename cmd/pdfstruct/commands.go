package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/pdfstruct/core/extract"
	"github.com/leofalp/pdfstruct/core/normalize"
	"github.com/leofalp/pdfstruct/internal/render"
	"github.com/leofalp/pdfstruct/internal/server"
	slogobs "github.com/leofalp/pdfstruct/providers/observability/slog"
)

func runExtract(ctx context.Context, envFile string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var path, prompt, modeRaw, format string
	fs.StringVar(&path, "file", "", "path to the PDF")
	fs.StringVar(&prompt, "prompt", "", "extraction prompt (default: built-in prompt)")
	fs.StringVar(&modeRaw, "mode", "", "document mode: auto, inline or upload (default from PDFSTRUCT_DOCUMENT_MODE)")
	fs.StringVar(&format, "format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if strings.TrimSpace(path) == "" {
		fmt.Fprintln(stderr, "extract requires -file")
		return exitUsage
	}
	if !validFormat(format) {
		fmt.Fprintf(stderr, "unknown format: %s\n", format)
		return exitUsage
	}

	var mode extract.DocumentMode
	if modeRaw != "" {
		parsed, err := extract.ParseMode(modeRaw)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		mode = parsed
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}
	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "read document: %v\n", err)
		return exitFailure
	}

	a, err := newApp(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFailure
	}

	extraction, err := a.extractor.Extract(ctx, extract.Request{
		Document: extract.Document{Name: filepath.Base(path), Data: data},
		Prompt:   prompt,
		Mode:     mode,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	if format == "json" {
		if err := writeJSON(stdout, render.FromExtraction(extraction)); err != nil {
			fmt.Fprintf(stderr, "write output: %v\n", err)
			return exitFailure
		}
	} else if err := render.Text(stdout, extraction.Result); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return exitFailure
	}

	return exitCodeFor(extraction.Result)
}

func runNormalize(ctx context.Context, envFile string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var path, format string
	fs.StringVar(&path, "file", "", "path to a saved model response (default stdin)")
	fs.StringVar(&format, "format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if !validFormat(format) {
		fmt.Fprintf(stderr, "unknown format: %s\n", format)
		return exitUsage
	}

	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(stderr, "read input: %v\n", err)
		return exitFailure
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}
	a, err := newApp(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFailure
	}

	result := a.extractor.NormalizeText(ctx, string(raw))

	if format == "json" {
		err = writeJSON(stdout, render.NewEnvelope(result))
	} else {
		err = render.Text(stdout, result)
	}
	if err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return exitFailure
	}

	return exitCodeFor(result)
}

func runServe(ctx context.Context, envFile string, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var addr string
	fs.StringVar(&addr, "addr", "", "listen address (default from PDFSTRUCT_HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	a, err := newApp(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFailure
	}
	if err := cfg.RequireAPIKey(); err != nil {
		a.logger.Warn("GEMINI_API_KEY is not set, /v1/extract will answer 503")
	}

	if slogobs.GetLogLevelFromEnv() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Config{
		Extractor:      a.extractor,
		Metrics:        a.metrics.Handler(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         a.logger,
	})
	if err := srv.Run(ctx, addr); err != nil {
		a.logger.Error("server stopped", "error", err)
		return exitFailure
	}
	return exitOK
}

func validFormat(format string) bool {
	return format == "text" || format == "json"
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func exitCodeFor(result normalize.Result) int {
	if result.Parsed() {
		return exitOK
	}
	return exitUnparseable
}
