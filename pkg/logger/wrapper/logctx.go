package wrap

import (
	"context"
)

type (
	// LogCtx holds the request-scoped fields the logger attaches to every record.
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string
		RideID    string
		DriverID  string
	}

	logCtxKeyStruct struct{}
)

// LogCtxKey is the context key LogCtx is stored under.
var LogCtxKey = &logCtxKeyStruct{}

// FromContext returns the LogCtx carried by ctx, or the zero value.
func FromContext(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

// WithLogCtx stores newLc in ctx. Empty fields keep the values already in ctx.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	return context.WithValue(ctx, LogCtxKey, merge(newLc, FromContext(ctx)))
}

func update(ctx context.Context, set func(*LogCtx)) context.Context {
	lc := FromContext(ctx)
	set(&lc)
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.UserID = userID })
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.RequestID = requestID })
}

func WithRideID(ctx context.Context, rideID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.RideID = rideID })
}

// WithAction names the operation in progress, e.g. "accept_ride".
func WithAction(ctx context.Context, action string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.Action = action })
}

func WithDriverID(ctx context.Context, driverID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.DriverID = driverID })
}
