package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishLocationKeysByRide(t *testing.T) {
	w := &fakeWriter{}
	p := NewLocationProducerWithWriter(w, time.Second)

	report := models.LocationReport{
		RideID:     uuid.New(),
		DriverID:   uuid.New(),
		Location:   models.Location{Latitude: 43.2, Longitude: 76.9},
		RecordedAt: time.Now().UTC(),
	}
	require.NoError(t, p.PublishLocation(context.Background(), report))
	require.Len(t, w.msgs, 1)
	require.Equal(t, report.RideID.String(), string(w.msgs[0].Key))

	var got models.LocationReport
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, report.DriverID, got.DriverID)
	require.Equal(t, 43.2, got.Latitude)
}

func TestPublishLocationWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewLocationProducerWithWriter(&fakeWriter{err: boom}, 0)
	require.ErrorIs(t, p.PublishLocation(context.Background(), models.LocationReport{}), boom)
}
