// Package notification fans ride events out to connected drivers.
package notification

import (
	"context"
	"errors"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

var ErrMalformedEvent = errors.New("malformed push message")

type Hub interface {
	Broadcast(v any) int
}

type Service struct {
	hub Hub
	l   logger.Logger
}

func NewService(hub Hub, l logger.Logger) *Service {
	return &Service{hub: hub, l: l}
}

// Dispatch broadcasts msg to every connected driver. Drivers that are
// offline catch up through polling.
func (s *Service) Dispatch(ctx context.Context, msg models.PushMessage) error {
	ctx = wrap.WithAction(ctx, "dispatch_push_message")

	switch msg.Type {
	case types.PushNewRideRequest:
		if msg.Ride == nil {
			return ErrMalformedEvent
		}
		ctx = wrap.WithRideID(ctx, msg.Ride.ID.String())
	case types.PushRideCancelled:
		if msg.RideID == "" {
			return ErrMalformedEvent
		}
		ctx = wrap.WithRideID(ctx, msg.RideID)
	default:
		return ErrMalformedEvent
	}

	n := s.hub.Broadcast(msg)
	metrics.RecordPushEvent(msg.Type.String(), "out")
	s.l.Info(ctx, "push message sent", "type", msg.Type.String(), "drivers", n)
	return nil
}
