// Package traced decorates a storage.Store with OpenTelemetry spans.
package traced

import (
	"context"

	"github.com/louisbranch/datastore/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/datastore/internal/storage"

// Store wraps another store and records one span per call.
type Store struct {
	next   storage.Store
	tracer trace.Tracer
}

// Wrap decorates next. A nil provider falls back to the global one, which is
// a no-op unless telemetry was configured.
func Wrap(next storage.Store, provider trace.TracerProvider) *Store {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Store{next: next, tracer: provider.Tracer(instrumentationName)}
}

// Load records a datastore.storage.load span.
func (s *Store) Load(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "datastore.storage.load", trace.WithAttributes(
		attribute.String("datastore.key", key),
	))
	defer span.End()

	value, found, err := s.next.Load(ctx, key)
	span.SetAttributes(attribute.Bool("datastore.found", found))
	record(span, err)
	return value, found, err
}

// Save records a datastore.storage.save span.
func (s *Store) Save(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "datastore.storage.save", trace.WithAttributes(
		attribute.String("datastore.key", key),
		attribute.Int("datastore.value_bytes", len(value)),
	))
	defer span.End()

	err := s.next.Save(ctx, key, value)
	record(span, err)
	return err
}

// SaveBatch records a datastore.storage.save_batch span.
func (s *Store) SaveBatch(ctx context.Context, entries []storage.Entry) error {
	ctx, span := s.tracer.Start(ctx, "datastore.storage.save_batch", trace.WithAttributes(
		attribute.Int("datastore.batch_size", len(entries)),
	))
	defer span.End()

	err := s.next.SaveBatch(ctx, entries)
	record(span, err)
	return err
}

// MaxKeyBytes forwards the wrapped store's key size limit.
func (s *Store) MaxKeyBytes() int {
	return storage.MaxKeyBytes(s.next)
}

// Close closes the wrapped store.
func (s *Store) Close() error {
	return s.next.Close()
}

func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.KeyLimiter = (*Store)(nil)
)
