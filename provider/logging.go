package provider

import (
	"context"
	"time"

	"github.com/kbukum/diarkit/logger"
)

// WithLogging returns a Middleware that logs each Execute call with the
// provider name, duration and outcome.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &loggingRR[I, O]{inner: inner, log: log}
	}
}

type loggingRR[I, O any] struct {
	inner RequestResponse[I, O]
	log   *logger.Logger
}

func (l *loggingRR[I, O]) Name() string                         { return l.inner.Name() }
func (l *loggingRR[I, O]) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := l.inner.Execute(ctx, input)
	logOutcome(ctx, l.log, l.inner.Name(), "execute", time.Since(start), err)
	return output, err
}

// WithSinkLogging returns a SinkMiddleware that logs each Send call.
func WithSinkLogging[I any](log *logger.Logger) SinkMiddleware[I] {
	return func(inner Sink[I]) Sink[I] {
		return &loggingSink[I]{inner: inner, log: log}
	}
}

type loggingSink[I any] struct {
	inner Sink[I]
	log   *logger.Logger
}

func (l *loggingSink[I]) Name() string                         { return l.inner.Name() }
func (l *loggingSink[I]) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingSink[I]) Send(ctx context.Context, input I) error {
	start := time.Now()
	err := l.inner.Send(ctx, input)
	logOutcome(ctx, l.log, l.inner.Name(), "send", time.Since(start), err)
	return err
}

func logOutcome(ctx context.Context, log *logger.Logger, name, op string, d time.Duration, err error) {
	fields := logger.DurationFields(op, d)
	fields["provider"] = name
	if err != nil {
		log.WithContext(ctx).Error("provider "+op+" failed", logger.MergeWithError(fields, err))
		return
	}
	log.WithContext(ctx).Debug("provider "+op+" ok", fields)
}
