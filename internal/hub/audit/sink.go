package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
)

// Sink receives audit events. Send may block on I/O and may fail.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Send(ctx context.Context, e Event) error { return f(ctx, e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) error { return nil })

// LogSink writes events to a structured logger with token values masked.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Send(ctx context.Context, e Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit event",
		slog.String("event_id", e.ID),
		slog.String("kind", string(e.Kind)),
		slog.Time("time", e.Time),
		slog.String("token", domain.MaskToken(e.Token)),
		slog.String("detail", e.Detail),
	)
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Send(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
