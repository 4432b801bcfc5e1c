package service

import (
	"context"
	"log/slog"
)

type logAttrsKey struct{}

// WithLogAttrs attaches request scoped log attributes, such as a
// correlation id, to ctx
func WithLogAttrs(ctx context.Context, args ...any) context.Context {
	if prev, ok := ctx.Value(logAttrsKey{}).([]any); ok {
		args = append(append([]any{}, prev...), args...)
	}
	return context.WithValue(ctx, logAttrsKey{}, args)
}

func loggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if args, ok := ctx.Value(logAttrsKey{}).([]any); ok && len(args) > 0 {
		return logger.With(args...)
	}
	return logger
}
