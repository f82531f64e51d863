package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/app/microservices"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

var (
	ErrInvalidMode           = errors.New("invalid mode")
	ErrServiceNotInitialized = errors.New("service not initialized")
)

// Service is one runnable mode. Start blocks until shutdown.
type Service interface {
	Start(ctx context.Context) error
}

type constructor func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error)

// builders maps every --mode value to the service it runs.
var builders = map[types.ServiceMode]constructor{
	types.RideService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewRide(ctx, cfg, log)
	},
	types.DriverService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewDriver(ctx, cfg, log)
	},
	types.AuthService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewAuth(ctx, cfg, log)
	},
	types.DriverAgent: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewDriverAgent(ctx, cfg, log)
	},
}

type App struct {
	mode    types.ServiceMode
	service Service
	log     logger.Logger
}

// NewApplication builds the service selected by cfg.Mode.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	ctx = wrap.WithAction(ctx, "app_init")

	build, ok := builders[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Mode)
	}

	service, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", cfg.Mode, err)
	}
	if service == nil {
		return nil, fmt.Errorf("init %s: %w", cfg.Mode, ErrServiceNotInitialized)
	}

	log.Debug(ctx, "service initialized", "mode", cfg.Mode.String())
	return &App{mode: cfg.Mode, service: service, log: log}, nil
}

// Run starts the service and returns once it stops.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.service == nil {
		return ErrServiceNotInitialized
	}

	if err := a.service.Start(ctx); err != nil {
		return fmt.Errorf("%s: %w", a.mode, err)
	}
	return nil
}
