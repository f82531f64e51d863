package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubService struct{ err error }

func (s stubService) Start(context.Context) error { return s.err }

func TestNewApplicationRejectsUnknownMode(t *testing.T) {
	_, err := NewApplication(context.Background(), config.Config{Mode: "admin-service"}, logger.New(io.Discard, "test", logger.LevelError))
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestEveryModeHasABuilder(t *testing.T) {
	for _, mode := range []types.ServiceMode{types.RideService, types.DriverService, types.AuthService, types.DriverAgent} {
		require.Contains(t, builders, mode)
	}
}

func TestRun(t *testing.T) {
	var empty *App
	require.ErrorIs(t, empty.Run(context.Background()), ErrServiceNotInitialized)

	a := &App{mode: types.RideService, service: stubService{}}
	require.NoError(t, a.Run(context.Background()))

	boom := errors.New("listen failed")
	a.service = stubService{err: boom}
	err := a.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, string(types.RideService))
}
