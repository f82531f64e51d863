package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestContextFieldsAreInjected(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "driver-agent", LevelInfo)

	ctx := wrap.WithAction(context.Background(), "session_accept")
	ctx = wrap.WithRideID(ctx, "r1")
	ctx = wrap.WithDriverID(ctx, "d1")
	l.Info(ctx, "accepted")

	rec := decode(t, &buf)
	require.Equal(t, "accepted", rec["message"])
	require.Equal(t, "driver-agent", rec["service"])
	require.Equal(t, "session_accept", rec["action"])
	require.Equal(t, "r1", rec["ride_id"])
	require.Equal(t, "d1", rec["driver_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", LevelWarn)

	l.Info(context.Background(), "dropped")
	require.Zero(t, buf.Len())

	l.Warn(context.Background(), "kept")
	require.NotZero(t, buf.Len())
}

func TestErrorCtxRestoresFailureSiteContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", LevelDebug)

	inner := wrap.WithRideID(wrap.WithAction(context.Background(), "update_status"), "r9")
	err := wrap.Error(inner, errors.New("boom"))
	err = wrap.Error(wrap.WithAction(context.Background(), "outer"), fmt.Errorf("handler: %w", err))

	require.Equal(t, "handler: boom", err.Error())

	l.Error(wrap.ErrorCtx(context.Background(), err), "failed", err)
	rec := decode(t, &buf)
	require.Equal(t, "outer", rec["action"])
	require.Equal(t, "r9", rec["ride_id"])
	require.Equal(t, map[string]any{"msg": "handler: boom"}, rec["error"])
}

func TestErrorGroupKeepsItsOwnKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", LevelInfo)

	l.Error(context.Background(), "query failed", errors.New("connection refused"))

	rec := decode(t, &buf)
	require.Equal(t, "query failed", rec["message"])
	require.NotContains(t, rec, "msg")
	require.Equal(t, map[string]any{"msg": "connection refused"}, rec["error"])
}

func TestValidateLogLevel(t *testing.T) {
	require.True(t, ValidateLogLevel(LevelError))
	require.False(t, ValidateLogLevel("TRACE"))
}
