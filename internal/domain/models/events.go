package models

import (
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/google/uuid"
)

// PushMessage is the payload delivered to drivers over the push channel.
type PushMessage struct {
	Type   types.PushType `json:"type"`
	Ride   *RideRequest   `json:"ride,omitempty"`
	RideID string         `json:"ride_id,omitempty"`
}

// RideRequestedMessage is published on the ride exchange after a booking.
type RideRequestedMessage struct {
	Ride          RideRequest `json:"ride"`
	CorrelationID string      `json:"correlation_id"`
	Timestamp     time.Time   `json:"timestamp"`
}

// RideCancelledMessage is published when a requester cancels.
type RideCancelledMessage struct {
	RideID        uuid.UUID `json:"ride_id"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}
