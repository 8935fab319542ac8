// Command pdfstruct extracts structured JSON from PDFs with Gemini.
//
// Usage:
//
//	pdfstruct [-env FILE] extract -file doc.pdf [-prompt TEXT] [-mode auto|inline|upload] [-format text|json]
//	pdfstruct [-env FILE] normalize [-file raw.txt] [-format text|json]
//	pdfstruct [-env FILE] serve [-addr :8080]
//
// Settings come from the environment and an optional .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const version = "dev"

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitUnparseable = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var envFile string
	var showVersion bool
	root := flag.NewFlagSet("pdfstruct", flag.ContinueOnError)
	root.SetOutput(stderr)
	root.StringVar(&envFile, "env", "", "path to a .env file (default .env in the working directory)")
	root.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := root.Parse(args); err != nil {
		return exitUsage
	}

	if showVersion {
		fmt.Fprintf(stdout, "pdfstruct %s\n", version)
		return exitOK
	}

	rest := root.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	switch rest[0] {
	case "extract":
		return runExtract(ctx, envFile, rest[1:], stdout, stderr)
	case "normalize":
		return runNormalize(ctx, envFile, rest[1:], stdin, stdout, stderr)
	case "serve":
		return runServe(ctx, envFile, rest[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", rest[0])
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: pdfstruct [-env FILE] <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  extract    send a PDF to Gemini and print the structured result")
	fmt.Fprintln(w, "  normalize  repair and parse a saved model response")
	fmt.Fprintln(w, "  serve      run the HTTP API")
}
