package microservices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	httpserver "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/server"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/rabbit"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/auth"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/notification"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	rabbitclient "github.com/Temutjin2k/ambulance-dispatch/pkg/rabbit"
	ws "github.com/Temutjin2k/ambulance-dispatch/pkg/wsHub"
)

// DriverService holds the drivers' push channels and feeds them from the ride exchange.
type DriverService struct {
	rabbitClient *rabbitclient.RabbitMQ
	consumer     *rabbit.NotificationConsumer
	hub          *ws.ConnectionHub
	notifier     *notification.Service
	httpServer   *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewDriver(ctx context.Context, cfg config.Config, log logger.Logger) (*DriverService, error) {
	rabbitClient, err := rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		return nil, err
	}

	consumer, err := rabbit.NewNotificationConsumer(rabbitClient, cfg.Mode.String(), log)
	if err != nil {
		log.Error(ctx, "failed to declare driver notification queue", err)
		_ = rabbitClient.Close(ctx)
		return nil, err
	}

	hub := ws.NewConnHub(log)

	// tokens are verified locally with the shared secret
	tokens := auth.NewAuthService(nil, auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL), log)

	httpServer, err := httpserver.New(cfg, httpserver.Services{
		Tokens: tokens,
		Hub:    hub,
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		_ = rabbitClient.Close(ctx)
		return nil, err
	}

	return &DriverService{
		rabbitClient: rabbitClient,
		consumer:     consumer,
		hub:          hub,
		notifier:     notification.NewService(hub, log),
		httpServer:   httpServer,
		cfg:          cfg,
		log:          log,
	}, nil
}

func (s *DriverService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	s.httpServer.Run(ctx, errCh)
	go func() {
		if err := s.consumer.Consume(ctx, s.notifier.Dispatch); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("ride event consumer stopped: %w", err)
		}
	}()

	defer func() {
		cancel()
		s.close(context.WithoutCancel(ctx))
		s.log.Info(ctx, "driver service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(wrap.WithAction(ctx, "driver_service_start"), "driver service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *DriverService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.hub != nil {
		s.hub.Close()
	}

	if s.rabbitClient != nil {
		if err := s.rabbitClient.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}
}
