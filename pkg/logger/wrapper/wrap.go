package wrap

import (
	"context"
	"errors"
)

// ctxError carries the LogCtx of the place the error was raised, so the
// caller that finally logs it can report ride and driver ids it never saw.
type ctxError struct {
	err    error
	logCtx LogCtx
}

func (e *ctxError) Error() string { return e.err.Error() }

func (e *ctxError) Unwrap() error { return e.err }

// Error wraps err with the LogCtx carried by ctx.
// Fields already attached deeper in the chain win over empty ones in ctx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c := FromContext(ctx)
	var e *ctxError
	if errors.As(err, &e) {
		c = merge(c, e.logCtx)
	}

	return &ctxError{err: err, logCtx: c}
}

// ErrorCtx returns ctx enriched with the fields recorded in err by Error.
// Fields already set in ctx are kept.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *ctxError
	if !errors.As(err, &e) || e == nil {
		return ctx
	}
	return context.WithValue(ctx, LogCtxKey, merge(FromContext(ctx), e.logCtx))
}

// merge fills the empty fields of dst from src.
func merge(dst, src LogCtx) LogCtx {
	if dst.Action == "" {
		dst.Action = src.Action
	}
	if dst.UserID == "" {
		dst.UserID = src.UserID
	}
	if dst.RequestID == "" {
		dst.RequestID = src.RequestID
	}
	if dst.RideID == "" {
		dst.RideID = src.RideID
	}
	if dst.DriverID == "" {
		dst.DriverID = src.DriverID
	}
	return dst
}
