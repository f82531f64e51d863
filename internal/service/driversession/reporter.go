package driversession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

// reporter is the location loop for one ride. Only the actor starts and stops it.
type reporter struct {
	rideID uuid.UUID
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (c *Controller) startReporter(ctx context.Context, rideID uuid.UUID) {
	if c.rep != nil {
		return
	}

	rctx, cancel := context.WithCancel(wrap.WithRideID(wrap.WithAction(ctx, types.ActionLocationReport), rideID.String()))
	r := &reporter{rideID: rideID, cancel: cancel}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		c.report(rctx, rideID)
	}()

	c.rep = r
	c.l.Info(rctx, "location tracking started", "interval", c.cfg.LocationInterval.String())
	c.notify(ctx, NoticeSuccess, msgTrackingStarted)
}

// stopReporter returns once the loop goroutine has exited, so no write can
// follow it.
func (c *Controller) stopReporter(ctx context.Context) {
	if c.rep == nil {
		return
	}
	r := c.rep
	c.rep = nil

	r.cancel()
	r.wg.Wait()
	c.l.Info(wrap.WithRideID(ctx, r.rideID.String()), "location tracking stopped")
}

func (c *Controller) report(ctx context.Context, rideID uuid.UUID) {
	ticker := time.NewTicker(c.cfg.LocationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if denied := c.reportOnce(ctx, rideID); denied {
			c.post(ctx, func(loopCtx context.Context) {
				c.onPermissionDenied(loopCtx, rideID)
			})
			return
		}
	}
}

func (c *Controller) reportOnce(ctx context.Context, rideID uuid.UUID) (denied bool) {
	gctx, cancel := context.WithTimeout(ctx, c.cfg.GeoTimeout)
	pos, err := c.deps.Geo.Current(gctx)
	cancel()
	if err != nil {
		if errors.Is(err, types.ErrPermissionDenied) {
			return true
		}
		if ctx.Err() == nil {
			metrics.RecordLocationReport(err)
			c.l.Warn(ctx, "location sample failed", "error", err.Error())
		}
		return false
	}

	recorded := pos.Timestamp
	if recorded.IsZero() {
		recorded = c.now()
	}
	report := models.LocationReport{
		RideID:     rideID,
		DriverID:   c.driverID,
		Location:   pos.Location,
		RecordedAt: recorded,
	}

	if err := c.deps.Store.UpdateDriverLocation(ctx, report); err != nil {
		if ctx.Err() == nil {
			metrics.RecordLocationReport(err)
			c.l.Error(wrap.ErrorCtx(ctx, err), "failed to write driver location", err)
		}
		return false
	}
	metrics.RecordLocationReport(nil)

	if c.deps.Sink != nil {
		if err := c.deps.Sink.PublishLocation(ctx, report); err != nil && ctx.Err() == nil {
			c.l.Warn(ctx, "failed to stream driver location", "error", err.Error())
		}
	}
	return false
}

// onPermissionDenied runs on the actor. Tracking stays off until the current ride changes.
func (c *Controller) onPermissionDenied(ctx context.Context, rideID uuid.UUID) {
	if c.rep == nil || c.rep.rideID != rideID {
		return
	}
	c.stopReporter(ctx)
	c.deniedRide = rideID
	c.notify(ctx, NoticeError, msgPermissionDenied)
}
