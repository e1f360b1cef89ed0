package otel

import (
	"context"
	"sync"

	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/hanpama/gitminer/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and subscribes a span recorder to bus.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string, bus *eventbus.Bus) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Subscribe(bus, otel.Tracer("gitminer"))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Subscribe records client events on bus as spans of tracer: one span per
// execution, with a child span per HTTP attempt and per throttle wait.
func Subscribe(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer       trace.Tracer
	execSpans    sync.Map // rid -> trace.Span
	requestSpans sync.Map // rid -> trace.Span
	waitSpans    sync.Map // rid -> trace.Span
}

// parent returns ctx carrying the execution span of rid, if one is open.
func (s *subscriber) parent(ctx context.Context, rid uint64) context.Context {
	if v, ok := s.execSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func end(spans *sync.Map, rid uint64, err error, attrs ...attribute.KeyValue) {
	v, ok := spans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.ExecuteStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "github.execute")
			span.SetAttributes(attribute.String("graphql.document", e.Query))
			s.execSpans.Store(rid, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.ExecuteFinish) {
			rid, _ := reqid.FromContext(ctx)
			end(&s.execSpans, rid, e.Err)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.RequestStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "github.request", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				semconv.HTTPMethodKey.String("POST"),
				semconv.HTTPURLKey.String(e.URL),
				attribute.Int("github.attempt", e.Attempt),
				attribute.Bool("github.probe", e.Probe),
			)
			s.requestSpans.Store(rid, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.RequestFinish) {
			rid, _ := reqid.FromContext(ctx)
			end(&s.requestSpans, rid, e.Err,
				semconv.HTTPStatusCodeKey.Int(e.Status),
				attribute.Bool("github.timeout", e.Timeout),
			)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.RateLimit) {
			rid, _ := reqid.FromContext(ctx)
			if v, ok := s.execSpans.Load(rid); ok {
				v.(trace.Span).AddEvent("github.rate_limit", trace.WithAttributes(
					attribute.Int("github.cost", e.Cost),
					attribute.Int("github.remaining", e.Remaining),
					attribute.String("github.reset_at", e.ResetAt.Format("2006-01-02T15:04:05Z07:00")),
				))
			}
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.ThrottleStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "github.throttle")
			span.SetAttributes(
				attribute.Int("github.cost", e.Cost),
				attribute.Int("github.remaining", e.Remaining),
				attribute.String("github.wait", e.Wait.String()),
			)
			s.waitSpans.Store(rid, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.ThrottleFinish) {
			rid, _ := reqid.FromContext(ctx)
			end(&s.waitSpans, rid, e.Err)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
