package rabbit

import (
	"context"
	"encoding/json"
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

// RideEventHandler receives ride events translated into push messages.
type RideEventHandler func(ctx context.Context, msg models.PushMessage) error

// NotificationConsumer reads ride events for the driver push hub.
type NotificationConsumer struct {
	client  *rabbit.RabbitMQ
	queue   string
	service string

	l logger.Logger
}

func NewNotificationConsumer(client *rabbit.RabbitMQ, service string, log logger.Logger) (*NotificationConsumer, error) {
	if err := client.DeclareTopic(RideExchange); err != nil {
		return nil, err
	}
	if err := client.BindQueue(QueueDriverNotifications, RideExchange, types.RoutingRideRequested, types.RoutingRideCancelled); err != nil {
		return nil, err
	}

	return &NotificationConsumer{
		client:  client,
		queue:   QueueDriverNotifications,
		service: service,
		l:       log,
	}, nil
}

// Consume blocks until ctx is done, reconnecting when the channel drops.
func (c *NotificationConsumer) Consume(ctx context.Context, handler RideEventHandler) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_ride_events")

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "ride event consumer stopped by context")
			return nil
		}

		ch, err := c.client.Channel(ctx)
		if err != nil {
			c.l.Error(ctx, "rabbit channel unavailable", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
		if err != nil {
			c.l.Error(ctx, "consume failed", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		c.l.Info(ctx, "start consuming ride events", "queue", c.queue)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "ride event consumer shutting down")
				return nil

			case d, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting...")
					break consumeLoop
				}
				c.handle(ctx, d, handler)
			}
		}
	}
}

func (c *NotificationConsumer) handle(ctx context.Context, d amqp091.Delivery, handler RideEventHandler) {
	msg, err := decodeRideEvent(d.RoutingKey, d.Body)
	metrics.RecordRabbitMQConsume(c.service, c.queue, err)
	if err != nil {
		c.l.Error(ctx, "failed to decode ride event", err, "routing_key", d.RoutingKey)
		_ = d.Nack(false, false)
		return
	}

	// добавляем в контекст переменные для логирования и трассировки
	ctx = wrap.WithRequestID(ctx, d.CorrelationId)

	if err := handler(ctx, msg); err != nil {
		c.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle ride event", err)
		_ = d.Nack(false, isRecoverableError(err))
		return
	}

	if err := d.Ack(false); err != nil {
		c.l.Error(ctx, "failed to ack message", err)
	}
}

// decodeRideEvent maps a broker delivery onto the driver push contract.
func decodeRideEvent(routingKey string, body []byte) (models.PushMessage, error) {
	switch routingKey {
	case types.RoutingRideRequested:
		var m models.RideRequestedMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return models.PushMessage{}, fmt.Errorf("decode %s: %w", routingKey, err)
		}
		ride := m.Ride
		return models.PushMessage{Type: types.PushNewRideRequest, Ride: &ride}, nil

	case types.RoutingRideCancelled:
		var m models.RideCancelledMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return models.PushMessage{}, fmt.Errorf("decode %s: %w", routingKey, err)
		}
		return models.PushMessage{Type: types.PushRideCancelled, RideID: m.RideID.String()}, nil

	default:
		return models.PushMessage{}, fmt.Errorf("unexpected routing key %q", routingKey)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
