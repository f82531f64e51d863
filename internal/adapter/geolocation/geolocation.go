// Package geolocation provides one-shot device position sampling for the driver agent.
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

// Fixed always reports the configured coordinates.
type Fixed struct {
	loc models.Location
	now func() time.Time
}

func NewFixed(lat, lng float64) *Fixed {
	return &Fixed{loc: models.Location{Latitude: lat, Longitude: lng}, now: time.Now}
}

func (f *Fixed) Current(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, types.ErrLocationTimeout
	}
	return models.Position{Location: f.loc, Timestamp: f.now()}, nil
}

// Disabled models a device where the operator refused location access.
type Disabled struct{}

func (Disabled) Current(context.Context) (models.Position, error) {
	return models.Position{}, types.ErrPermissionDenied
}

// SessionState is the part of a session the Device locator needs.
type SessionState interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Device reads the last position the driver's device published into its session.
// It waits for a fresh sample until ctx expires.
type Device struct {
	session  SessionState
	maxAge   time.Duration
	pollEach time.Duration
	now      func() time.Time
}

func NewDevice(session SessionState, maxAge time.Duration) *Device {
	return &Device{
		session:  session,
		maxAge:   maxAge,
		pollEach: 250 * time.Millisecond,
		now:      time.Now,
	}
}

// Report stores loc as the device's latest sample, stamped now.
func (d *Device) Report(ctx context.Context, loc models.Location, accuracy float64) error {
	raw, err := json.Marshal(models.Position{Location: loc, Accuracy: accuracy, Timestamp: d.now()})
	if err != nil {
		return fmt.Errorf("encode device position: %w", err)
	}
	if err := d.session.Set(ctx, models.SessionKeyDevicePosition, string(raw)); err != nil {
		return fmt.Errorf("store device position: %w", err)
	}
	return nil
}

// SetPermission records the operator's answer to the location prompt.
func (d *Device) SetPermission(ctx context.Context, granted bool) error {
	value := models.PermissionDenied
	if granted {
		value = models.PermissionGranted
	}
	if err := d.session.Set(ctx, models.SessionKeyLocationPermission, value); err != nil {
		return fmt.Errorf("store location permission: %w", err)
	}
	return nil
}

func (d *Device) Current(ctx context.Context) (models.Position, error) {
	ticker := time.NewTicker(d.pollEach)
	defer ticker.Stop()

	for {
		pos, err := d.sample(ctx)
		if err == nil || !errors.Is(err, types.ErrLocationTimeout) {
			return pos, err
		}

		select {
		case <-ctx.Done():
			return models.Position{}, types.ErrLocationTimeout
		case <-ticker.C:
		}
	}
}

func (d *Device) sample(ctx context.Context) (models.Position, error) {
	perm, _, err := d.session.Get(ctx, models.SessionKeyLocationPermission)
	if err != nil {
		return models.Position{}, fmt.Errorf("read location permission: %w", err)
	}
	if perm == models.PermissionDenied {
		return models.Position{}, types.ErrPermissionDenied
	}

	raw, ok, err := d.session.Get(ctx, models.SessionKeyDevicePosition)
	if err != nil {
		return models.Position{}, fmt.Errorf("read device position: %w", err)
	}
	if !ok {
		return models.Position{}, types.ErrLocationTimeout
	}

	var pos models.Position
	if err := json.Unmarshal([]byte(raw), &pos); err != nil {
		return models.Position{}, fmt.Errorf("decode device position: %w", err)
	}
	if d.maxAge > 0 && !pos.Timestamp.IsZero() && d.now().Sub(pos.Timestamp) > d.maxAge {
		return models.Position{}, types.ErrLocationTimeout
	}
	return pos, nil
}
