package driversession

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

// refresh is the only authoritative reconciliation: an active ride for this
// driver wins, otherwise the open requests are reloaded.
func (c *Controller) refresh(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRefresh)

	profile, err := c.deps.Store.GetProfile(ctx, c.driverID)
	if err != nil {
		return c.fail(ctx, msgLoadFailed, err)
	}

	active, err := c.deps.Store.GetActiveForDriver(ctx, c.driverID)
	if err != nil {
		return c.fail(ctx, msgLoadFailed, err)
	}

	if active != nil {
		c.profile = profile
		c.open = nil
		c.setCurrent(ctx, active)
		c.lastErr = ""
		return nil
	}

	open, err := c.deps.Store.ListOpen(ctx)
	if err != nil {
		return c.fail(ctx, msgLoadFailed, err)
	}

	c.profile = profile
	c.open = open
	c.setCurrent(ctx, nil)
	c.lastErr = ""
	return nil
}

func (c *Controller) handlePush(ctx context.Context, msg models.PushMessage) {
	ctx = wrap.WithAction(ctx, types.ActionPush)

	switch msg.Type {
	case types.PushNewRideRequest:
		ride := msg.Ride
		if ride == nil {
			c.l.Warn(ctx, "new ride request without ride payload")
			return
		}
		if c.current != nil {
			return
		}
		if ride.Status != types.StatusPending || ride.DriverID != nil {
			c.l.Debug(ctx, "ignoring push for a ride that is no longer open", "ride_id", ride.ID.String())
			return
		}
		for i := range c.open {
			if c.open[i].ID == ride.ID {
				return
			}
		}
		c.open = append(c.open, *ride.Clone())
		c.notify(ctx, NoticeInfo, msgNewRequest)

	case types.PushRideCancelled:
		id, err := uuid.Parse(msg.RideID)
		if err != nil {
			c.l.Warn(ctx, "ride_cancelled with malformed ride_id", "ride_id", msg.RideID)
			return
		}
		c.removeOpen(id)
		if c.current != nil && c.current.ID == id {
			c.notify(ctx, NoticeInfo, msgRideCancelled)
			c.setCurrent(ctx, nil)
		}

	default:
		c.l.Debug(ctx, "ignoring unknown push message", "type", msg.Type.String())
	}
}

func (c *Controller) accept(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, types.ActionAccept), rideID.String())

	if c.current != nil {
		c.notify(ctx, NoticeError, msgAlreadyHasRide)
		return nil, fmt.Errorf("%w: ride %s is still in progress", types.ErrTransitionRejected, c.current.ID)
	}

	ride, err := c.deps.Store.Accept(ctx, rideID, c.driverID)
	if err != nil {
		if errors.Is(err, types.ErrAcceptanceConflict) {
			metrics.RecordAccept("conflict")
			c.l.Info(ctx, "ride was claimed by another driver")
			c.notify(ctx, NoticeError, msgAcceptFailed+": "+types.ErrAcceptanceConflict.Error())
			c.refreshDue = true
			return nil, err
		}
		metrics.RecordAccept("error")
		return nil, c.fail(ctx, msgAcceptFailed, err)
	}

	metrics.RecordAccept("accepted")
	c.l.Info(ctx, "ride accepted")

	c.open = nil
	c.setCurrent(ctx, ride)
	c.lastErr = ""
	c.notify(ctx, NoticeSuccess, msgAccepted)
	return ride.Clone(), nil
}

func (c *Controller) advance(ctx context.Context, target types.RideStatus) (*models.RideRequest, error) {
	ctx = wrap.WithAction(ctx, types.ActionAdvanceStatus)

	if c.current == nil {
		c.notify(ctx, NoticeError, msgNoCurrentRide)
		return nil, fmt.Errorf("%w: no current ride", types.ErrTransitionRejected)
	}
	ctx = wrap.WithRideID(ctx, c.current.ID.String())

	from := c.current.Status
	if !from.CanAdvanceTo(target) {
		c.notify(ctx, NoticeError, msgInvalidTransition)
		return nil, fmt.Errorf("%w: %s -> %s", types.ErrTransitionRejected, from, target)
	}

	// Leaving the tracking statuses: no location write may follow the update.
	if !target.IsTracking() {
		c.stopReporter(ctx)
	}

	upd := models.StatusUpdate{
		RideID:   c.current.ID,
		DriverID: c.driverID,
		From:     from,
		To:       target,
		Location: c.sampleSoft(ctx),
	}

	ride, err := c.deps.Store.UpdateStatus(ctx, upd)
	metrics.RecordStatusTransition(target.String(), err)
	if err != nil {
		c.setCurrent(ctx, c.current)
		if errors.Is(err, types.ErrTransitionRejected) {
			c.l.Warn(ctx, "status update matched no ride, reconciling", "from", from.String(), "to", target.String())
			c.notify(ctx, NoticeError, msgStatusFailed)
			c.refreshDue = true
			return nil, err
		}
		return nil, c.fail(ctx, msgStatusFailed, err)
	}

	c.l.Info(ctx, "ride status updated", "from", from.String(), "to", target.String())
	c.lastErr = ""
	c.notify(ctx, NoticeSuccess, statusNotice(target))

	if target == types.StatusCompleted {
		c.setCurrent(ctx, nil)
		c.refreshDue = true
		return ride.Clone(), nil
	}

	c.setCurrent(ctx, ride)
	return ride.Clone(), nil
}

// sampleSoft returns the device position, or nil when none arrives within GeoTimeout.
func (c *Controller) sampleSoft(ctx context.Context) *models.Location {
	gctx, cancel := context.WithTimeout(ctx, c.cfg.GeoTimeout)
	defer cancel()

	pos, err := c.deps.Geo.Current(gctx)
	if err != nil {
		c.l.Debug(ctx, "updating status without location", "reason", err.Error())
		return nil
	}
	loc := pos.Location
	return &loc
}

// setCurrent replaces the current ride and starts or stops the reporter on
// the edges of the tracking statuses.
func (c *Controller) setCurrent(ctx context.Context, ride *models.RideRequest) {
	prevID := rideID(c.current)
	c.current = ride.Clone()
	nextID := rideID(c.current)

	if prevID != nextID {
		c.deniedRide = uuid.Nil
	}

	track := c.current != nil && c.current.Status.IsTracking() && c.deniedRide != nextID

	if c.rep != nil && (!track || c.rep.rideID != nextID) {
		c.stopReporter(ctx)
	}
	if track && c.rep == nil {
		c.startReporter(ctx, nextID)
	}
}

func (c *Controller) removeOpen(id uuid.UUID) {
	kept := c.open[:0]
	for _, r := range c.open {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.open = kept
}

// fail records err as the dashboard error. The loop keeps running.
func (c *Controller) fail(ctx context.Context, msg string, err error) error {
	c.l.Error(wrap.ErrorCtx(ctx, err), msg, err)
	c.lastErr = msg
	c.notify(ctx, NoticeError, msg)
	return err
}

func rideID(r *models.RideRequest) uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	return r.ID
}
