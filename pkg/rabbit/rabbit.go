package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

const (
	heartbeat        = 10 * time.Second
	reconnectTries   = 5
	reconnectBackoff = 2 * time.Second
)

var ErrClosed = errors.New("rabbitmq client is closed")

// RabbitMQ owns one connection and one channel. A dropped connection is
// redialled lazily by Channel, and the declared topology is replayed on the
// new channel.
type RabbitMQ struct {
	dsn string
	log logger.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	closed   bool // Close was called
	topology []func(*amqp.Channel) error
}

// New dials dsn and opens the first channel.
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{dsn: dsn, log: log}

	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}
	r.conn, r.ch = conn, ch
	go r.watch(conn, ch)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")
	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{Heartbeat: heartbeat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// watch logs the first close event of conn or ch. Channel notices the
// closed state on its next call and redials.
func (r *RabbitMQ) watch(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	var cause *amqp.Error
	select {
	case cause = <-connClosed:
	case cause = <-chClosed:
	}

	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)
	if cause != nil {
		r.log.Error(ctx, "RabbitMQ connection lost", cause)
		return
	}
	r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
}

// Channel returns a usable channel, reconnecting first when the current one
// has been closed by the broker or the network.
func (r *RabbitMQ) Channel(ctx context.Context) (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.ch != nil && !r.ch.IsClosed() && r.conn != nil && !r.conn.IsClosed() {
		return r.ch, nil
	}

	if err := r.reconnectLocked(ctx); err != nil {
		return nil, err
	}
	return r.ch, nil
}

func (r *RabbitMQ) reconnectLocked(ctx context.Context) error {
	r.log.Warn(ctx, "rabbit connection closed, reconnecting")

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range reconnectTries {
		conn, ch, err = dial(r.dsn)
		if err == nil {
			break
		}

		wait := time.Duration(i+1) * reconnectBackoff
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrTransport, err)
	}

	for _, declare := range r.topology {
		if err := declare(ch); err != nil {
			_ = conn.Close()
			return fmt.Errorf("replay topology: %w", err)
		}
	}

	r.conn, r.ch = conn, ch
	go r.watch(conn, ch)

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")
	return nil
}

// declare runs fn on the current channel and remembers it for reconnects.
func (r *RabbitMQ) declare(ctx context.Context, fn func(*amqp.Channel) error) error {
	ch, err := r.Channel(ctx)
	if err != nil {
		return err
	}
	if err := fn(ch); err != nil {
		return err
	}

	r.mu.Lock()
	r.topology = append(r.topology, fn)
	r.mu.Unlock()
	return nil
}

// DeclareTopic declares a durable topic exchange.
func (r *RabbitMQ) DeclareTopic(exchange string) error {
	return r.declare(context.Background(), func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
		return nil
	})
}

// BindQueue declares a durable queue and binds it to exchange under every key.
func (r *RabbitMQ) BindQueue(queue, exchange string, keys ...string) error {
	return r.declare(context.Background(), func(ch *amqp.Channel) error {
		q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		for _, key := range keys {
			if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s with %s: %w", q.Name, exchange, key, err)
			}
		}
		return nil
	})
}

// Close closes the channel and the connection. It gives up waiting once ctx
// is done; later calls are no-ops.
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ch, conn := r.ch, r.conn
	r.ch, r.conn = nil, nil
	r.mu.Unlock()

	if ch != nil {
		if err := withCtx(ctx, ch.Close); err != nil && !errors.Is(err, amqp.ErrClosed) {
			r.log.Debug(ctx, "error closing channel", "error", err.Error())
		}
	}
	if conn != nil {
		if err := withCtx(ctx, conn.Close); err != nil && !errors.Is(err, amqp.ErrClosed) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")
	return nil
}

func withCtx(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
