package provider

import (
	"context"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
)

// WithLogging returns a Middleware that logs each Execute call with the
// provider name, the input labels and the duration. Failures are logged at
// warn with the error code, successes at debug.
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

	fields := logger.MergeWithDuration(map[string]any{"provider": l.inner.Name()}, time.Since(start))
	for k, v := range labelsOf(input) {
		fields[k] = v
	}

	if err != nil {
		fields[logger.FieldError] = err.Error()
		if code := errors.CodeOf(err); code != "" {
			fields[logger.FieldErrorCode] = string(code)
		}
		l.log.Warn("provider execute failed", fields)
	} else {
		l.log.Debug("provider execute ok", fields)
	}

	return output, err
}
