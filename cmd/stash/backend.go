package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/adapter/bolt"
	"github.com/spetersoncode/stash/adapter/file"
	"github.com/spetersoncode/stash/adapter/instrument"
	"github.com/spetersoncode/stash/adapter/remote"
	"github.com/spetersoncode/stash/adapter/retrying"
	"github.com/spetersoncode/stash/adapter/sqlite"
	"github.com/spetersoncode/stash/internal/config"
	"github.com/spetersoncode/stash/retry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Document is the value the CLI stores.
type Document = map[string]any

// backend is an opened store plus the resources to release with it.
type backend struct {
	store   *stash.Store[Document]
	closers []func(context.Context) error
}

// Close releases every resource in reverse order of acquisition.
func (b *backend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// openBackend builds the adapter chain described by cfg:
// medium, then retries, then logging, then tracing when enabled.
func openBackend(cfg *config.Config, logger *slog.Logger) (*backend, error) {
	b := &backend{}

	var adapter stash.Adapter[Document]
	location := cfg.Path
	switch cfg.Backend {
	case config.BackendJSON:
		adapter = file.JSON[Document](cfg.Path)
	case config.BackendYAML:
		adapter = file.YAML[Document](cfg.Path)
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		doc := sqlite.Document[Document](db, cfg.Document)
		adapter, location = doc, doc.Location()
	case config.BackendBolt:
		db, err := bolt.Open(cfg.Path, bolt.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		doc := bolt.Document[Document](db, cfg.Document)
		adapter, location = doc, doc.Location()
	case config.BackendRemote:
		adapter = remote.New[Document](cfg.URL,
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
		location = cfg.URL
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}

	logger = logger.With("backend", string(cfg.Backend))

	adapter = retrying.Wrap(adapter, retry.WithAttempts(cfg.RetryAttempts),
		retrying.WithNotify[Document](func(e retry.Event) {
			if e.Type == retry.EventRetrying {
				logger.Warn("retrying storage operation",
					"attempt", e.Attempt,
					"max_attempts", e.MaxAttempts,
					"delay", e.Delay,
					"error", e.Error,
				)
			}
		}),
	)
	adapter = instrument.WithLogger(adapter, logger, "location", location)

	if cfg.Trace {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&logExporter{logger: logger}),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		b.closers = append(b.closers, tp.Shutdown)
		adapter = instrument.WithTracer(adapter, tp.Tracer("github.com/spetersoncode/stash/cmd/stash"))
	}

	store, err := stash.New(adapter)
	if err != nil {
		return nil, err
	}
	b.store = store
	return b, nil
}
