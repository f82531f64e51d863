package driversession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

func TestReporterWritesOnlyWhileTracking(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	sink := &memSink{}
	c := startController(t, store, d, func(deps *Deps, cfg *Config) {
		deps.Sink = sink
		cfg.LocationInterval = 5 * time.Millisecond
	})
	ctx := context.Background()

	r1 := store.addRide(types.StatusPending, nil)
	_, err := c.Accept(ctx, r1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, countNotices(c.Snapshot(), msgTrackingStarted))

	require.Eventually(t, func() bool { return len(store.writes()) >= 2 }, 2*time.Second, 5*time.Millisecond)

	for _, st := range []types.RideStatus{types.StatusEnRoute, types.StatusPickedUp} {
		_, err = c.AdvanceStatus(ctx, st)
		require.NoError(t, err)
	}
	// Same ride across tracking statuses: the loop is never restarted.
	require.Equal(t, 1, countNotices(c.Snapshot(), msgTrackingStarted))

	_, err = c.AdvanceStatus(ctx, types.StatusCompleted)
	require.NoError(t, err)
	require.False(t, c.Snapshot().LocationReportingActive)

	n := len(store.writes())
	time.Sleep(40 * time.Millisecond)
	require.Len(t, store.writes(), n)
	require.Zero(t, store.rejected())

	for _, w := range store.writes() {
		require.Equal(t, r1.ID, w.RideID)
		require.Equal(t, d, w.DriverID)
		require.Equal(t, here, w.Location)
	}
	require.Equal(t, n, sink.count())
}

func TestPermissionDeniedStopsTrackingUntilRideChanges(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, func(deps *Deps, cfg *Config) {
		deps.Geo = deniedGeo{}
		cfg.LocationInterval = 5 * time.Millisecond
	})

	require.Eventually(t, func() bool {
		return !c.Snapshot().LocationReportingActive
	}, 2*time.Second, 5*time.Millisecond)

	s := c.Snapshot()
	require.Equal(t, 1, countNotices(s, msgPermissionDenied))

	_, err := c.AdvanceStatus(context.Background(), types.StatusEnRoute)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	s = c.Snapshot()
	require.False(t, s.LocationReportingActive)
	require.Equal(t, 1, countNotices(s, msgPermissionDenied))
	require.Equal(t, 1, countNotices(s, msgTrackingStarted))
	require.Empty(t, store.writes())
}

func TestLogoutTearsEverythingDown(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	store.addRide(types.StatusAccepted, &d)
	push := &fakePush{}
	sess := &memSession{}
	c := startController(t, store, d, func(deps *Deps, cfg *Config) {
		deps.Push = push.connect
		deps.Session = sess
		cfg.LocationInterval = 5 * time.Millisecond
		cfg.PollInterval = 5 * time.Millisecond
	})

	require.Eventually(t, func() bool { return len(store.writes()) > 0 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Logout(context.Background()))

	select {
	case <-c.Done():
	default:
		t.Fatal("controller still running after logout")
	}

	require.True(t, push.isClosed())
	require.ElementsMatch(t, []string{models.SessionKeyToken, models.SessionKeyRole}, sess.deleted)
	require.False(t, c.Snapshot().LocationReportingActive)

	n := len(store.writes())
	time.Sleep(30 * time.Millisecond)
	require.Len(t, store.writes(), n)

	require.ErrorIs(t, c.Refresh(context.Background()), types.ErrSessionClosed)
	require.NoError(t, c.Logout(context.Background()))
}

func TestPushChannelFeedsController(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	push := &fakePush{}
	c := startController(t, store, d, func(deps *Deps, _ *Config) {
		deps.Push = push.connect
	})

	r := store.addRide(types.StatusPending, nil)
	push.deliver(models.PushMessage{Type: types.PushNewRideRequest, Ride: &r})

	require.Eventually(t, func() bool {
		return len(c.Snapshot().OpenRequests) == 1
	}, time.Second, 5*time.Millisecond)
}
