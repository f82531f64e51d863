package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeRideRequested(t *testing.T) {
	ride := models.RideRequest{ID: uuid.New(), Name: "A", Status: types.StatusPending}
	body, err := json.Marshal(models.RideRequestedMessage{Ride: ride})
	require.NoError(t, err)

	msg, err := decodeRideEvent(types.RoutingRideRequested, body)
	require.NoError(t, err)
	require.Equal(t, types.PushNewRideRequest, msg.Type)
	require.Equal(t, ride.ID, msg.Ride.ID)
}

func TestDecodeRideCancelled(t *testing.T) {
	id := uuid.New()
	body, err := json.Marshal(models.RideCancelledMessage{RideID: id})
	require.NoError(t, err)

	msg, err := decodeRideEvent(types.RoutingRideCancelled, body)
	require.NoError(t, err)
	require.Equal(t, types.PushRideCancelled, msg.Type)
	require.Equal(t, id.String(), msg.RideID)
	require.Nil(t, msg.Ride)
}

func TestDecodeRejectsUnknownKeysAndBadBodies(t *testing.T) {
	_, err := decodeRideEvent("ride.status.completed", []byte(`{}`))
	require.Error(t, err)

	_, err = decodeRideEvent(types.RoutingRideRequested, []byte(`{`))
	require.Error(t, err)
}

func TestRecoverableErrors(t *testing.T) {
	require.True(t, isRecoverableError(fmt.Errorf("x: %w", types.ErrTransport)))
	require.False(t, isRecoverableError(errors.New("bad payload")))
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetryGivesUpOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, 5, time.Second, func() error {
		calls++
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
