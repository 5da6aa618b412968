// Package main provides a small command-line client for a stash document.
//
// The document is a JSON object stored in the configured backend. Paths use
// dotted notation ("todos", "todos.0", "owner.name").
//
// Configuration is via environment variables (a .env file is loaded if present):
//
//	STASH_BACKEND        - json, yaml, sqlite, bolt, or remote (default: json)
//	STASH_PATH           - File or database path (default: db.json)
//	STASH_DOCUMENT       - Document name in the sqlite and bolt backends (default: default)
//	STASH_URL            - Resource URL for the remote backend
//	STASH_TIMEOUT        - Per-command timeout (default: 10s)
//	STASH_RETRY_ATTEMPTS - Attempts on transient errors (default: 3)
//	STASH_LOG_LEVEL      - debug, info, warn, or error (default: info)
//	STASH_TRACE          - Log a span for every storage operation (default: false)
//
// Usage:
//
//	stash get [path]
//	stash set <path> <json>
//	stash clear
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spetersoncode/stash/internal/config"
)

const usage = `usage:
  stash get [path]        print the document or the value at path
  stash set <path> <json> set path to a JSON value (plain text is stored as a string)
  stash clear             remove the document
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return 2
	}

	b, err := openBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to open backend", "backend", cfg.Backend, "error", err)
		return 1
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := cmd.run(ctx, b.store, stdout); err != nil {
		logger.Error("command failed", "command", cmd.name, "error", err)
		return 1
	}
	return 0
}
