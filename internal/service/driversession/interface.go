package driversession

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

// Store is the ride/driver query surface the controller reconciles against.
type Store interface {
	GetProfile(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error)
	// GetActiveForDriver returns nil, nil when the driver holds no active ride.
	GetActiveForDriver(ctx context.Context, driverID uuid.UUID) (*models.RideRequest, error)
	ListOpen(ctx context.Context) ([]models.RideRequest, error)
	Accept(ctx context.Context, rideID, driverID uuid.UUID) (*models.RideRequest, error)
	UpdateStatus(ctx context.Context, upd models.StatusUpdate) (*models.RideRequest, error)
	UpdateDriverLocation(ctx context.Context, report models.LocationReport) error
}

// PushConnector opens the driver's notification channel.
type PushConnector func(ctx context.Context, driverID uuid.UUID, onMessage func(models.PushMessage), onStatus func(types.ConnStatus)) (io.Closer, error)

// Geolocator samples the device position once. It must honour ctx's deadline.
type Geolocator interface {
	Current(ctx context.Context) (models.Position, error)
}

// LocationSink receives every successful location write.
type LocationSink interface {
	PublishLocation(ctx context.Context, report models.LocationReport) error
}

// Session is the device/session state the controller clears on logout.
type Session interface {
	Delete(ctx context.Context, keys ...string) error
}

// Notifier receives operator-facing notices as they are raised.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}
