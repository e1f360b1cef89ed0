package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/hanpama/gitminer/internal/reqid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSubscribeRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	unsubscribe := Subscribe(bus, tp.Tracer("test"))

	ctx, _ := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, bus, events.ExecuteStart{Query: "query { viewer { login } }"})
	eventbus.Publish(ctx, bus, events.RequestStart{URL: "https://api.github.com/graphql", Attempt: 1, Probe: true})
	eventbus.Publish(ctx, bus, events.RequestFinish{URL: "https://api.github.com/graphql", Attempt: 1, Probe: true, Status: 200})
	eventbus.Publish(ctx, bus, events.RateLimit{Cost: 40, Remaining: 100, ResetAt: time.Now()})
	eventbus.Publish(ctx, bus, events.ThrottleStart{Cost: 40, Remaining: 100, Wait: time.Minute})
	eventbus.Publish(ctx, bus, events.ThrottleFinish{Err: context.Canceled})
	eventbus.Publish(ctx, bus, events.ExecuteFinish{Err: errors.New("cancelled")})

	spans := rec.Ended()
	require.Len(t, spans, 3)
	require.Equal(t, "github.request", spans[0].Name())
	require.Equal(t, "github.throttle", spans[1].Name())
	require.Equal(t, "github.execute", spans[2].Name())

	exec := spans[2]
	require.Equal(t, exec.SpanContext().SpanID(), spans[0].Parent().SpanID())
	require.Equal(t, exec.SpanContext().SpanID(), spans[1].Parent().SpanID())
	require.Equal(t, codes.Error, exec.Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Len(t, exec.Events(), 2, "rate limit event plus recorded error")
	require.Equal(t, "github.rate_limit", exec.Events()[0].Name)

	unsubscribe()
	eventbus.Publish(ctx, bus, events.ExecuteStart{})
	eventbus.Publish(ctx, bus, events.ExecuteFinish{})
	require.Len(t, rec.Ended(), 3)
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup("", "gitminer", eventbus.New())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
