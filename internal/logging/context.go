package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerKey is a private context key for storing the logger
type loggerKey struct{}

// observableLoggerKey is a private context key for storing the observable logger
type observableLoggerKey struct{}

// WithLogger returns a child context that carries the provided logger
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithObservableLogger returns a child context that carries the provided
// observable logger and its underlying logger.
func WithObservableLogger(ctx context.Context, logger *ObservableLogger) context.Context {
	ctx = WithLogger(ctx, logger.logger)
	return context.WithValue(ctx, observableLoggerKey{}, logger)
}

// From extracts a logger from the context, or nil if absent
func From(ctx context.Context) *log.Logger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*log.Logger); ok {
			return lgr
		}
	}
	return nil
}

// FromContext returns the context logger or the package default logger.
func FromContext(ctx context.Context) *log.Logger {
	if lgr := From(ctx); lgr != nil {
		return lgr
	}
	return log.Default()
}

// FromObservable extracts an observable logger from the context, or nil if absent
func FromObservable(ctx context.Context) *ObservableLogger {
	if v := ctx.Value(observableLoggerKey{}); v != nil {
		if lgr, ok := v.(*ObservableLogger); ok {
			return lgr
		}
	}
	return nil
}

// ObservableFromContext returns the context observable logger, wrapping the
// plain context logger when none was stored.
func ObservableFromContext(ctx context.Context) *ObservableLogger {
	if lgr := FromObservable(ctx); lgr != nil {
		return lgr
	}
	return NewObservableLogger(FromContext(ctx))
}
