package driversession

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
)

var here = models.Location{Latitude: 12.97, Longitude: 77.59}

func startController(t *testing.T, store *memStore, driverID uuid.UUID, mod func(*Deps, *Config)) *Controller {
	t.Helper()

	deps := Deps{Store: store, Geo: fixedGeo{loc: here}}
	cfg := Config{PollInterval: time.Hour, LocationInterval: time.Hour, GeoTimeout: 50 * time.Millisecond}
	if mod != nil {
		mod(&deps, &cfg)
	}

	c := New(driverID, deps, cfg, logger.New(io.Discard, "test", logger.LevelError))
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})

	require.NoError(t, c.Refresh(context.Background()))
	return c
}

// settle waits until every message queued before it has been handled.
func settle(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.do(context.Background(), func(context.Context) error { return nil }))
}

func countNotices(s Snapshot, msg string) int {
	n := 0
	for _, x := range s.Notices {
		if x.Message == msg {
			n++
		}
	}
	return n
}

func requireExclusive(t *testing.T, s Snapshot) {
	t.Helper()
	if s.CurrentRide != nil {
		require.Empty(t, s.OpenRequests, "open requests visible while a ride is current")
	}
}

func TestRefreshPrefersActiveRide(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	mine := store.addRide(types.StatusEnRoute, &d)
	store.addRide(types.StatusPending, nil)

	c := startController(t, store, d, nil)

	s := c.Snapshot()
	require.NotNil(t, s.CurrentRide)
	require.Equal(t, mine.ID, s.CurrentRide.ID)
	require.Empty(t, s.OpenRequests)
	require.True(t, s.LocationReportingActive)
	require.Equal(t, "ravi", s.Profile.Name)
}

func TestRefreshListsOpenRequestsWhenIdle(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	other := store.addDriver("sita")
	store.addRide(types.StatusPending, nil)
	store.addRide(types.StatusPending, nil)
	store.addRide(types.StatusAccepted, &other)
	store.addRide(types.StatusCompleted, &d)

	c := startController(t, store, d, nil)

	s := c.Snapshot()
	require.Nil(t, s.CurrentRide)
	require.Len(t, s.OpenRequests, 2)
	require.False(t, s.LocationReportingActive)
}

func TestRefreshFailureKeepsLoopAlive(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)

	store.mu.Lock()
	store.failProfileCalls = 1
	store.mu.Unlock()

	require.Error(t, c.Refresh(context.Background()))
	require.Equal(t, msgLoadFailed, c.Snapshot().LastError)

	require.NoError(t, c.Refresh(context.Background()))
	require.Empty(t, c.Snapshot().LastError)
}

func TestPushNewRequestMergeIsIdempotent(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)

	ride := store.addRide(types.StatusPending, nil)
	msg := models.PushMessage{Type: types.PushNewRideRequest, Ride: &ride}

	c.HandlePush(context.Background(), msg)
	c.HandlePush(context.Background(), msg)
	settle(t, c)

	s := c.Snapshot()
	require.Len(t, s.OpenRequests, 1)
	require.Equal(t, ride.ID, s.OpenRequests[0].ID)
	require.Equal(t, 1, countNotices(s, msgNewRequest))
}

func TestPushNewRequestIgnoredWhileRideInProgress(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, nil)

	other := store.addRide(types.StatusPending, nil)
	c.HandlePush(context.Background(), models.PushMessage{Type: types.PushNewRideRequest, Ride: &other})
	settle(t, c)

	s := c.Snapshot()
	require.NotNil(t, s.CurrentRide)
	require.Empty(t, s.OpenRequests)
}

func TestPushCancellation(t *testing.T) {
	t.Run("removes open request", func(t *testing.T) {
		store := newMemStore()
		d := store.addDriver("ravi")
		r1 := store.addRide(types.StatusPending, nil)
		r2 := store.addRide(types.StatusPending, nil)
		c := startController(t, store, d, nil)

		c.HandlePush(context.Background(), models.PushMessage{Type: types.PushRideCancelled, RideID: r1.ID.String()})
		settle(t, c)

		s := c.Snapshot()
		require.Len(t, s.OpenRequests, 1)
		require.Equal(t, r2.ID, s.OpenRequests[0].ID)
	})

	t.Run("clears current ride and stops tracking", func(t *testing.T) {
		store := newMemStore()
		d := store.addDriver("ravi")
		mine := store.addRide(types.StatusAccepted, &d)
		c := startController(t, store, d, nil)
		require.True(t, c.Snapshot().LocationReportingActive)

		store.setStatus(mine.ID, types.StatusCancelled)
		c.HandlePush(context.Background(), models.PushMessage{Type: types.PushRideCancelled, RideID: mine.ID.String()})
		settle(t, c)

		s := c.Snapshot()
		require.Nil(t, s.CurrentRide)
		require.False(t, s.LocationReportingActive)
		require.Equal(t, 1, countNotices(s, msgRideCancelled))
	})

	t.Run("ignores malformed id", func(t *testing.T) {
		store := newMemStore()
		d := store.addDriver("ravi")
		store.addRide(types.StatusPending, nil)
		c := startController(t, store, d, nil)

		c.HandlePush(context.Background(), models.PushMessage{Type: types.PushRideCancelled, RideID: "nope"})
		settle(t, c)
		require.Len(t, c.Snapshot().OpenRequests, 1)
	})
}

func TestAcceptAfterPush(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)

	r1 := store.addRide(types.StatusPending, nil)
	c.HandlePush(context.Background(), models.PushMessage{Type: types.PushNewRideRequest, Ride: &r1})
	settle(t, c)
	require.Len(t, c.Snapshot().OpenRequests, 1)

	ride, err := c.Accept(context.Background(), r1.ID)
	require.NoError(t, err)
	require.Equal(t, r1.ID, ride.ID)

	s := c.Snapshot()
	require.Equal(t, r1.ID, s.CurrentRide.ID)
	require.Equal(t, types.StatusAccepted, s.CurrentRide.Status)
	require.Empty(t, s.OpenRequests)
	require.True(t, s.LocationReportingActive)
	require.Equal(t, 1, countNotices(s, msgAccepted))

	stored := store.ride(r1.ID)
	require.True(t, stored.IsAssignedTo(d))
}

func TestConcurrentAcceptHasExactlyOneWinner(t *testing.T) {
	store := newMemStore()
	a := store.addDriver("a")
	b := store.addDriver("b")
	r1 := store.addRide(types.StatusPending, nil)

	ca := startController(t, store, a, nil)
	cb := startController(t, store, b, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []*Controller{ca, cb} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Accept(context.Background(), r1.ID)
		}()
	}
	wg.Wait()

	winner, loser := ca, cb
	winnerID := a
	if errs[0] != nil {
		winner, loser = cb, ca
		winnerID = b
		require.ErrorIs(t, errs[0], types.ErrAcceptanceConflict)
		require.NoError(t, errs[1])
	} else {
		require.ErrorIs(t, errs[1], types.ErrAcceptanceConflict)
	}

	stored := store.ride(r1.ID)
	require.NotNil(t, stored.DriverID)
	require.Equal(t, winnerID, *stored.DriverID)

	require.Equal(t, r1.ID, winner.Snapshot().CurrentRide.ID)

	settle(t, loser)
	s := loser.Snapshot()
	require.Nil(t, s.CurrentRide)
	require.Empty(t, s.OpenRequests)
}

func TestAcceptRefusedWhileRideInProgress(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	mine := store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, nil)

	other := store.addRide(types.StatusPending, nil)
	_, err := c.Accept(context.Background(), other.ID)
	require.ErrorIs(t, err, types.ErrTransitionRejected)

	require.Nil(t, store.ride(other.ID).DriverID)
	require.Equal(t, mine.ID, c.Snapshot().CurrentRide.ID)
}

func TestAdvanceStatusFollowsLifecycle(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	mine := store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, nil)
	ctx := context.Background()

	for _, bad := range []types.RideStatus{types.StatusPickedUp, types.StatusCompleted, types.StatusCancelled, types.StatusPending, "flying"} {
		_, err := c.AdvanceStatus(ctx, bad)
		require.ErrorIs(t, err, types.ErrTransitionRejected, bad)
		require.Equal(t, types.StatusAccepted, c.Snapshot().CurrentRide.Status)
	}

	ride, err := c.AdvanceStatus(ctx, types.StatusEnRoute)
	require.NoError(t, err)
	require.Equal(t, types.StatusEnRoute, ride.Status)
	require.Equal(t, types.StatusEnRoute, c.Snapshot().CurrentRide.Status)

	store.mu.Lock()
	last := store.statusUpdates[len(store.statusUpdates)-1]
	store.mu.Unlock()
	require.NotNil(t, last.Location)
	require.Equal(t, here, *last.Location)

	_, err = c.AdvanceStatus(ctx, types.StatusPickedUp)
	require.NoError(t, err)

	next := store.addRide(types.StatusPending, nil)

	_, err = c.AdvanceStatus(ctx, types.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, store.ride(mine.ID).Status)

	settle(t, c)
	s := c.Snapshot()
	require.Nil(t, s.CurrentRide)
	require.False(t, s.LocationReportingActive)
	require.Len(t, s.OpenRequests, 1)
	require.Equal(t, next.ID, s.OpenRequests[0].ID)

	require.Equal(t, 1, countNotices(s, msgEnRoute))
	require.Equal(t, 1, countNotices(s, msgPickedUp))
	require.Equal(t, 1, countNotices(s, msgCompleted))
}

func TestAdvanceWithoutCurrentRideIsRejected(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)

	_, err := c.AdvanceStatus(context.Background(), types.StatusEnRoute)
	require.ErrorIs(t, err, types.ErrTransitionRejected)
	require.Equal(t, 1, countNotices(c.Snapshot(), msgNoCurrentRide))
}

func TestAdvanceRejectedWhenRideCancelledUnderneath(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	mine := store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, nil)

	store.setStatus(mine.ID, types.StatusCancelled)

	_, err := c.AdvanceStatus(context.Background(), types.StatusEnRoute)
	require.ErrorIs(t, err, types.ErrTransitionRejected)

	settle(t, c)
	s := c.Snapshot()
	require.Nil(t, s.CurrentRide)
	require.False(t, s.LocationReportingActive)
}

func TestAdvanceProceedsWithoutLocationAfterGeoTimeout(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	store.addRide(types.StatusAccepted, &d)
	c := startController(t, store, d, func(deps *Deps, cfg *Config) {
		deps.Geo = hangingGeo{}
		cfg.GeoTimeout = 20 * time.Millisecond
	})

	start := time.Now()
	_, err := c.AdvanceStatus(context.Background(), types.StatusEnRoute)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 2*time.Second)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Nil(t, store.statusUpdates[len(store.statusUpdates)-1].Location)
}

func TestMutualExclusionHoldsUnderRandomEvents(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(7))
	var known []uuid.UUID

	for range 300 {
		switch rng.Intn(5) {
		case 0:
			r := store.addRide(types.StatusPending, nil)
			known = append(known, r.ID)
			c.HandlePush(ctx, models.PushMessage{Type: types.PushNewRideRequest, Ride: &r})
		case 1:
			if len(known) > 0 {
				id := known[rng.Intn(len(known))]
				c.HandlePush(ctx, models.PushMessage{Type: types.PushRideCancelled, RideID: id.String()})
			}
		case 2:
			_ = c.Refresh(ctx)
		case 3:
			if open := c.Snapshot().OpenRequests; len(open) > 0 {
				_, _ = c.Accept(ctx, open[rng.Intn(len(open))].ID)
			}
		case 4:
			if cur := c.Snapshot().CurrentRide; cur != nil {
				if next, ok := cur.Status.Next(); ok {
					_, _ = c.AdvanceStatus(ctx, next)
				}
			}
		}
		settle(t, c)

		s := c.Snapshot()
		requireExclusive(t, s)
		tracking := s.CurrentRide != nil && s.CurrentRide.Status.IsTracking()
		require.Equal(t, tracking, s.LocationReportingActive)
	}
}

func TestRunTwice(t *testing.T) {
	store := newMemStore()
	d := store.addDriver("ravi")
	c := startController(t, store, d, nil)

	require.ErrorIs(t, c.Run(context.Background()), ErrAlreadyRunning)
}
