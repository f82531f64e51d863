package microservices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/authclient"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/geolocation"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler"
	httpserver "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/server"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/kafka"
	repo "github.com/Temutjin2k/ambulance-dispatch/internal/adapter/postgres"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/pushclient"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/session"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/driversession"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	postgresclient "github.com/Temutjin2k/ambulance-dispatch/pkg/postgres"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/trm"
)

// DriverAgent runs one logged-in driver's session controller and its local dashboard.
type DriverAgent struct {
	postgresDB   *postgresclient.PostgreDB
	closeSession func()
	sink         *kafka.LocationProducer
	controller   *driversession.Controller
	httpServer   *httpserver.API

	cfg config.Config
	log logger.Logger
}

// sessionStore joins the ride and driver repositories into the controller's Store.
type sessionStore struct {
	*repo.RideRepo
	*repo.DriverRepo
}

func NewDriverAgent(ctx context.Context, cfg config.Config, log logger.Logger) (*DriverAgent, error) {
	ctx = wrap.WithAction(ctx, "driver_agent_init")
	a := &DriverAgent{cfg: cfg, log: log, closeSession: func() {}}

	store, closeSession, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closeSession = closeSession

	sess, err := session.New(store, cfg.Agent.SessionID)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	driverID, err := a.login(ctx, sess)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	ctx = wrap.WithDriverID(ctx, driverID.String())

	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		a.close(ctx)
		return nil, err
	}
	a.postgresDB = db

	service := cfg.Mode.String()
	rides := &sessionStore{
		RideRepo:   repo.NewRideRepo(db.Pool, trm.New(db.Pool), service),
		DriverRepo: repo.NewDriverRepo(db.Pool, service),
	}

	geo, device := newGeolocator(cfg.Agent, sess)
	deps := driversession.Deps{
		Store:    rides,
		Geo:      geo,
		Push:     newPushConnector(cfg.Agent, sess, log),
		Session:  sess,
		Notifier: driversession.NewLogNotifier(log),
	}
	if cfg.Kafka.Enabled {
		a.sink = kafka.NewLocationProducer(cfg.Kafka.Brokers, cfg.Kafka.LocationTopic, cfg.Kafka.WriteTimeout)
		deps.Sink = a.sink
		log.Info(ctx, "streaming driver locations to kafka", "topic", cfg.Kafka.LocationTopic)
	}

	a.controller = driversession.New(driverID, deps, driversession.Config{
		PollInterval:     cfg.Dispatch.PollInterval,
		LocationInterval: cfg.Dispatch.LocationInterval,
		GeoTimeout:       cfg.Dispatch.GeoTimeout,
		NoticeLimit:      cfg.Dispatch.NoticeLimit,
	}, log)

	services := httpserver.Services{
		Dashboard: a.controller,
		Checks:    map[string]handler.HealthCheck{"postgres": db.Pool.Ping},
	}
	if device != nil {
		services.Device = device
	}

	a.httpServer, err = httpserver.New(cfg, services, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		a.close(ctx)
		return nil, err
	}

	return a, nil
}

// login obtains a token, checks that it belongs to a driver and keeps it in the session.
func (a *DriverAgent) login(ctx context.Context, sess *session.Session) (uuid.UUID, error) {
	client := authclient.New(a.cfg.Agent.AuthURL, a.cfg.Agent.HTTPTimeout)

	token, err := client.Login(ctx, a.cfg.Agent.Username, a.cfg.Agent.Password)
	if err != nil {
		a.log.Error(wrap.ErrorCtx(ctx, err), "driver login failed", err)
		return uuid.Nil, err
	}

	user, err := client.Me(ctx, token.AccessToken)
	if err != nil {
		a.log.Error(wrap.ErrorCtx(ctx, err), "failed to load driver identity", err)
		return uuid.Nil, err
	}
	if user.Role != types.RoleDriver || user.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("role %q: %w", user.Role, types.ErrNotDriver)
	}

	for key, value := range map[string]string{
		models.SessionKeyToken:  token.AccessToken,
		models.SessionKeyRole:   user.Role.String(),
		models.SessionKeyUserID: user.ID.String(),
	} {
		if err := sess.Set(ctx, key, value); err != nil {
			return uuid.Nil, err
		}
	}

	a.log.Info(ctx, "driver logged in", "username", user.Username, "expires_at", token.ExpiresAt.Format(time.RFC3339))
	return user.ID, nil
}

// newGeolocator picks the position source. The device is returned separately
// in device mode so the dashboard can feed it samples.
func newGeolocator(cfg config.AgentConfig, sess *session.Session) (driversession.Geolocator, *geolocation.Device) {
	switch cfg.GeoMode {
	case types.GeoDevice:
		device := geolocation.NewDevice(sess, cfg.DeviceMaxAge)
		return device, device
	case types.GeoDisabled:
		return geolocation.Disabled{}, nil
	default:
		return geolocation.NewFixed(cfg.FixedLatitude, cfg.FixedLongitude), nil
	}
}

// newPushConnector dials the driver channel with whatever token the session holds at dial time.
func newPushConnector(cfg config.AgentConfig, sess *session.Session, log logger.Logger) driversession.PushConnector {
	client := pushclient.New(cfg.PushURL, func(ctx context.Context) (string, error) {
		token, ok, err := sess.Get(ctx, models.SessionKeyToken)
		if err != nil {
			return "", err
		}
		if !ok || token == "" {
			return "", errors.New("no access token in session")
		}
		return token, nil
	}, cfg.HTTPTimeout, log)

	return func(ctx context.Context, driverID uuid.UUID, onMessage func(models.PushMessage), onStatus func(types.ConnStatus)) (io.Closer, error) {
		sub, err := client.Connect(ctx, driverID, onMessage, onStatus)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
}

func (a *DriverAgent) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	a.httpServer.Run(ctx, errCh)

	runDone := make(chan error, 1)
	go func() {
		runDone <- a.controller.Run(runCtx)
	}()

	defer func() {
		cancel()
		<-a.controller.Done()
		a.close(ctx)
		a.log.Info(ctx, "driver agent closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "driver agent started", "dashboard", "http://"+a.httpServer.Addr()+"/dashboard")

	select {
	case errRun := <-errCh:
		return errRun
	case err := <-runDone:
		// Logout from the dashboard ends the session and the process.
		a.log.Info(ctx, "driver session ended")
		return err
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (a *DriverAgent) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn(ctx, "failed to close kafka writer", "error", err.Error())
		}
	}

	a.closeSession()

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
