package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRideStatusNext(t *testing.T) {
	cases := []struct {
		from RideStatus
		want RideStatus
		ok   bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusAccepted, StatusEnRoute, true},
		{StatusEnRoute, StatusPickedUp, true},
		{StatusPickedUp, StatusCompleted, true},
		{StatusCompleted, "", false},
		{StatusCancelled, "", false},
		{RideStatus("parked"), "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			next, ok := tc.from.Next()
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, next)
		})
	}
}

func TestRideStatusCanAdvanceTo(t *testing.T) {
	require.True(t, StatusAccepted.CanAdvanceTo(StatusEnRoute))
	require.False(t, StatusAccepted.CanAdvanceTo(StatusPickedUp), "skipping a step")
	require.False(t, StatusPickedUp.CanAdvanceTo(StatusEnRoute), "moving backwards")
	require.False(t, StatusAccepted.CanAdvanceTo(StatusCancelled))
	require.False(t, StatusCompleted.CanAdvanceTo(StatusCompleted))
}

func TestRideStatusPredicates(t *testing.T) {
	for _, s := range TrackingStatuses() {
		require.True(t, s.IsTracking(), s)
		require.True(t, s.IsActive(), s)
	}
	require.False(t, StatusPending.IsTracking())
	require.True(t, StatusPending.IsActive())
	require.False(t, StatusCompleted.IsActive())
	require.False(t, StatusCancelled.IsActive())
	require.False(t, RideStatus("").IsActive())

	require.True(t, StatusPending.CanCancel())
	require.True(t, StatusAccepted.CanCancel())
	require.False(t, StatusEnRoute.CanCancel())

	require.True(t, StatusCancelled.Valid())
	require.False(t, RideStatus("unknown").Valid())
	require.Equal(t, "Patient picked up", StatusPickedUp.Label())
}
