package ride

import (
	"context"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
)

type RideRepo interface {
	// Create returns nil, nil when the insert produced no row.
	Create(ctx context.Context, ride *models.RideRequest) (*models.RideRequest, error)
	GetWithDriver(ctx context.Context, rideID uuid.UUID) (*models.RideWithDriver, error)
	Cancel(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error)
}

type EventPublisher interface {
	PublishRideRequested(ctx context.Context, msg models.RideRequestedMessage) error
	PublishRideCancelled(ctx context.Context, msg models.RideCancelledMessage) error
}

// Session is the requester's device state.
type Session interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
