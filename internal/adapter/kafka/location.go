package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LocationProducer streams driver location reports keyed by ride id,
// so every ride's track lands on one partition in order.
type LocationProducer struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewLocationProducer(brokers []string, topic string, timeout time.Duration) *LocationProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewLocationProducerWithWriter(w, timeout)
}

func NewLocationProducerWithWriter(w MessageWriter, timeout time.Duration) *LocationProducer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &LocationProducer{writer: w, timeout: timeout}
}

func (p *LocationProducer) PublishLocation(ctx context.Context, report models.LocationReport) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal location report: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.RideID.String()),
		Value: b,
		Time:  report.RecordedAt,
	}); err != nil {
		return fmt.Errorf("write location report: %w", err)
	}
	return nil
}

func (p *LocationProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
