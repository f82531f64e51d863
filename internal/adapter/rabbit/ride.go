package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/rabbit"
)

const (
	RideExchange = "ride_topic"

	QueueDriverNotifications = "driver_notifications"
)

type RideBroker struct {
	client       *rabbit.RabbitMQ
	RideExchange string
	service      string

	l logger.Logger
}

func NewRideBroker(client *rabbit.RabbitMQ, service string, log logger.Logger) (*RideBroker, error) {
	if err := client.DeclareTopic(RideExchange); err != nil {
		return nil, err
	}

	return &RideBroker{
		client:       client,
		RideExchange: RideExchange,
		service:      service,
		l:            log,
	}, nil
}

// PublishRideRequested announces a new booking on 'ride_topic' with key 'ride.requested'.
func (r *RideBroker) PublishRideRequested(ctx context.Context, msg models.RideRequestedMessage) error {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "rabbitmq_publish_ride_requested"), msg.Ride.ID.String())
	return r.publish(ctx, types.RoutingRideRequested, msg.CorrelationID, msg)
}

// PublishRideCancelled announces a requester cancellation with key 'ride.cancelled'.
func (r *RideBroker) PublishRideCancelled(ctx context.Context, msg models.RideCancelledMessage) error {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "rabbitmq_publish_ride_cancelled"), msg.RideID.String())
	return r.publish(ctx, types.RoutingRideCancelled, msg.CorrelationID, msg)
}

func (r *RideBroker) publish(ctx context.Context, key, correlationID string, payload any) (err error) {
	defer func() { metrics.RecordRabbitMQPublish(r.service, key, err) }()

	ch, err := r.client.Channel(ctx)
	if err != nil {
		r.l.Error(ctx, "rabbit channel unavailable", err)
		if !errors.Is(err, types.ErrTransport) {
			err = fmt.Errorf("%w: %w", types.ErrTransport, err)
		}
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	if err := retry(ctx, 3, 500*time.Millisecond, func() error {
		return ch.PublishWithContext(
			ctx,
			r.RideExchange, // exchange
			key,            // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:   "application/json",
				DeliveryMode:  amqp091.Persistent,
				CorrelationId: correlationID,
				Body:          body,
				Timestamp:     time.Now(),
			},
		)
	}); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish with context: %w", err))
	}

	return nil
}
