// Package telemetry records named operational events. Events carry ids,
// counts and category names only, never record values.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Client sinks telemetry events.
type Client interface {
	TrackEvent(ctx context.Context, name string, props map[string]string) error
}

// Recorder writes events as structured log lines and as events on the span
// active in ctx, if any.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) TrackEvent(ctx context.Context, name string, props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	args := make([]any, 0, 2*len(keys)+2)
	args = append(args, "event", name)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, props[k]))
		args = append(args, k, props[k])
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
	r.logger.InfoContext(ctx, "telemetry event", args...)
	return nil
}

// Tracker wraps a Client so that telemetry can never fail the caller: errors
// and panics from the sink are logged and dropped. A nil Tracker is a no-op.
type Tracker struct {
	client Client
	logger *slog.Logger
}

func NewTracker(client Client, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{client: client, logger: logger}
}

// Track records the event, swallowing any failure.
func (t *Tracker) Track(ctx context.Context, name string, props map[string]string) {
	if t == nil || t.client == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.WarnContext(ctx, "telemetry panicked", "event", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := t.client.TrackEvent(ctx, name, props); err != nil {
		t.logger.DebugContext(ctx, "telemetry failed", "event", name, "error", err)
	}
}
