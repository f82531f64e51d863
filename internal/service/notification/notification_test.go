package notification

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
)

type recordingHub struct {
	sent []any
}

func (h *recordingHub) Broadcast(v any) int {
	h.sent = append(h.sent, v)
	return 2
}

func TestDispatch(t *testing.T) {
	hub := &recordingHub{}
	svc := NewService(hub, logger.New(io.Discard, "test", logger.LevelError))
	ctx := context.Background()

	ride := &models.RideRequest{ID: uuid.New(), Status: types.StatusPending}
	require.NoError(t, svc.Dispatch(ctx, models.PushMessage{Type: types.PushNewRideRequest, Ride: ride}))
	require.NoError(t, svc.Dispatch(ctx, models.PushMessage{Type: types.PushRideCancelled, RideID: ride.ID.String()}))
	require.Len(t, hub.sent, 2)

	require.ErrorIs(t, svc.Dispatch(ctx, models.PushMessage{Type: types.PushNewRideRequest}), ErrMalformedEvent)
	require.ErrorIs(t, svc.Dispatch(ctx, models.PushMessage{Type: types.PushRideCancelled}), ErrMalformedEvent)
	require.ErrorIs(t, svc.Dispatch(ctx, models.PushMessage{Type: "ride_moved"}), ErrMalformedEvent)
	require.Len(t, hub.sent, 2)
}
