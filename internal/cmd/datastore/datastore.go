// Package datastore parses datastore command configuration and runs a cache
// session against the configured backend.
package datastore

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/datastore/internal/cache"
	entrypoint "github.com/louisbranch/datastore/internal/platform/cmd"
	apperrors "github.com/louisbranch/datastore/internal/platform/errors"
	"github.com/louisbranch/datastore/internal/platform/otel"
	"github.com/louisbranch/datastore/internal/platform/timeouts"
	"github.com/louisbranch/datastore/internal/storage"
	"github.com/louisbranch/datastore/internal/storage/bbolt"
	"github.com/louisbranch/datastore/internal/storage/sqlite"
	"github.com/louisbranch/datastore/internal/storage/traced"
	"golang.org/x/text/language"
)

// Supported storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bbolt"
)

// Config holds datastore command configuration. Env tags are relative to the
// DATASTORE_ prefix.
type Config struct {
	Capacity  int    `env:"CAPACITY" envDefault:"128"`
	DBPath    string `env:"DB_PATH" envDefault:"data/datastore.db"`
	Backend   string `env:"BACKEND" envDefault:"sqlite"`
	Locale    string `env:"LOCALE" envDefault:"en-US"`
	Telemetry otel.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "Maximum number of entries held in memory")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The durable store database path")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Durable store backend (sqlite or bbolt)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used to format stats output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative, got %d", cfg.Capacity)
	}
	switch cfg.Backend {
	case BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("db path is required")
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	return nil
}

// Run opens the durable store, reads commands from in until EOF, quit, or
// ctx cancellation, and writes replies to out. Dirty entries are flushed
// before Run returns.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDatastore, cfg.Telemetry, func(ctx context.Context) error {
		return run(ctx, cfg, in, out)
	})
}

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) (err error) {
	store, err := OpenStore(cfg.Backend, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close store: %v", closeErr)
		}
	}()

	c, err := cache.New(cache.Config{Capacity: cfg.Capacity}, store)
	if err != nil {
		return err
	}
	defer func() {
		// The session context may already be canceled by a signal; the
		// teardown flush still gets its own bounded window.
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Flush)
		defer cancel()
		if closeErr := c.Close(flushCtx); closeErr != nil {
			log.Printf("flush on close: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	tag := language.MustParse(cfg.Locale)
	log.Printf("session started: backend=%s path=%s capacity=%d", cfg.Backend, cfg.DBPath, cfg.Capacity)
	return newSession(c, out, tag).serve(ctx, in)
}

// OpenStore opens the named backend at path, wrapped with tracing.
func OpenStore(backend, path string) (storage.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreUnavailable, "create data dir", err)
		}
	}

	var (
		store storage.Store
		err   error
	)
	switch backend {
	case BackendSQLite:
		store, err = sqlite.Open(path)
	case BackendBolt:
		store, err = bbolt.Open(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeStoreUnavailable,
			"open store",
			map[string]string{"backend": backend, "path": path},
			err,
		)
	}
	return traced.Wrap(store, nil), nil
}
