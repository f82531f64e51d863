package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler"
	httpserver "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/server"
	repo "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/postgres"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/rabbit"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/ride"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	postgresclient "github.com/Temutjin2k/ambulance-dispatch/pkg/postgres"
	rabbitclient "github.com/Temutjin2k/ambulance-dispatch/pkg/rabbit"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/trm"
)

type RideService struct {
	postgresDB   *postgresclient.PostgreDB
	rabbitClient *rabbitclient.RabbitMQ
	closeSession func()
	httpServer   *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewRide(ctx context.Context, cfg config.Config, log logger.Logger) (*RideService, error) {
	s := &RideService{cfg: cfg, log: log, closeSession: func() {}}

	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}
	s.postgresDB = db

	rabbitClient, err := rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		s.close(ctx)
		return nil, err
	}
	s.rabbitClient = rabbitClient

	sessions, closeSession, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to setup session store", err)
		s.close(ctx)
		return nil, err
	}
	s.closeSession = closeSession

	// repositories and brokers
	rideRepo := repo.NewRideRepo(db.Pool, trm.New(db.Pool), cfg.Mode.String())
	broker, err := rabbit.NewRideBroker(rabbitClient, cfg.Mode.String(), log)
	if err != nil {
		log.Error(ctx, "failed to declare ride exchange", err)
		s.close(ctx)
		return nil, err
	}

	rideService := ride.NewRideService(rideRepo, broker, ride.Config{
		FixedCharge:      cfg.Dispatch.FixedCharge,
		DefaultLatitude:  cfg.Dispatch.DefaultLatitude,
		DefaultLongitude: cfg.Dispatch.DefaultLongitude,
	}, cfg.Mode.String(), log)

	s.httpServer, err = httpserver.New(cfg, httpserver.Services{
		Rides:    rideService,
		Sessions: sessions,
		Checks:   map[string]handler.HealthCheck{"postgres": s.postgresDB.Pool.Ping},
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *RideService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "ride service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "ride service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *RideService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.rabbitClient != nil {
		if err := s.rabbitClient.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}

	s.closeSession()

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
