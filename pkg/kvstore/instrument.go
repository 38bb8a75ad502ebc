package kvstore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for storage spans.
const defaultTracerName = "github.com/terpenos/storefront/pkg/kvstore"

// FailureHook is called after a failed operation.
// op is "get", "set" or "remove".
type FailureHook func(backend, op string, err error)

// InstrumentOption configures Instrument.
type InstrumentOption func(*InstrumentedStore)

// WithTracer sets the tracer used for spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) InstrumentOption {
	return func(s *InstrumentedStore) {
		s.tracer = tracer
	}
}

// WithFailureHook registers a hook called on every failed operation.
func WithFailureHook(hook FailureHook) InstrumentOption {
	return func(s *InstrumentedStore) {
		s.onFailure = hook
	}
}

// InstrumentedStore wraps a Store with a span per operation.
type InstrumentedStore struct {
	inner     Store
	backend   string
	tracer    trace.Tracer
	onFailure FailureHook
}

// Instrument wraps inner so that every operation is traced and failures
// are reported to the failure hook.
func Instrument(inner Store, backend string, opts ...InstrumentOption) *InstrumentedStore {
	s := &InstrumentedStore{
		inner:   OrNoop(inner),
		backend: backend,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(defaultTracerName)
	}
	return s
}

// Get returns the value stored under key.
func (s *InstrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.start(ctx, "get", key)
	defer span.End()

	v, ok, err := s.inner.Get(ctx, key)
	span.SetAttributes(attribute.Bool("kv.found", ok))
	s.finish(span, "get", err)
	return v, ok, err
}

// Set stores value under key.
func (s *InstrumentedStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.start(ctx, "set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("kv.value_bytes", len(value)))
	err := s.inner.Set(ctx, key, value)
	s.finish(span, "set", err)
	return err
}

// Remove deletes key.
func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "remove", key)
	defer span.End()

	err := s.inner.Remove(ctx, key)
	s.finish(span, "remove", err)
	return err
}

// Unwrap returns the wrapped store.
func (s *InstrumentedStore) Unwrap() Store {
	return s.inner
}

func (s *InstrumentedStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "kvstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("kv.backend", s.backend),
			attribute.String("kv.key", key),
		),
	)
}

func (s *InstrumentedStore) finish(span trace.Span, op string, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.onFailure != nil {
		s.onFailure(s.backend, op, err)
	}
}
