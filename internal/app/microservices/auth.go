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
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/auth"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	postgresclient "github.com/Temutjin2k/ambulance-dispatch/pkg/postgres"
)

type AuthService struct {
	postgresDB *postgresclient.PostgreDB
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewAuth(ctx context.Context, cfg config.Config, log logger.Logger) (*AuthService, error) {
	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	// repositories
	driverRepo := repo.NewDriverRepo(db.Pool, cfg.Mode.String())

	// services
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authSvc := auth.NewAuthService(driverRepo, tokenSvc, log)

	server, err := httpserver.New(cfg, httpserver.Services{
		Tokens: authSvc,
		Auth:   authSvc,
		Checks: map[string]handler.HealthCheck{"postgres": db.Pool.Ping},
	}, log)
	if err != nil {
		db.Pool.Close()
		return nil, err
	}

	return &AuthService{
		postgresDB: db,
		httpServer: server,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *AuthService) Start(ctx context.Context) error {
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "auth service closed")
	}()

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *AuthService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Error(ctx, "failed to shutdown HTTP server", err)
	}

	s.postgresDB.Pool.Close()
}
