package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/middleware"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/session"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/ambulance-dispatch/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware
	authOn bool

	addr string
	cfg  config.Config
	log  logger.Logger
}

// Services are the collaborators a mode needs. Fields a mode does not use stay nil.
type Services struct {
	Tokens    middleware.TokenVerifier // token checks for protected routes
	Auth      handler.AuthService
	Rides     handler.RideService
	Sessions  session.Store
	Hub       *ws.ConnectionHub
	Dashboard handler.DriverSession
	Device    handler.DeviceLocation // set when the agent samples a real device
	Checks    map[string]handler.HealthCheck // dependency probes reported by /health
}

type handlers struct {
	health    *handler.Health
	ride      *handler.Ride
	auth      *handler.Auth
	push      *handler.DriverPush
	dashboard *handler.Dashboard
	sessions  session.Store
}

func New(cfg config.Config, svc Services, logger logger.Logger) (*API, error) {
	var (
		addr   string
		authOn bool
	)
	handlers := &handlers{
		health: handler.NewHealth(cfg.Mode.String(), svc.Checks, logger),
	}

	switch cfg.Mode {
	case types.RideService:
		if svc.Rides == nil || svc.Sessions == nil {
			return nil, errors.New("ride service and session store are required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.RideService)
		handlers.ride = handler.NewRide(svc.Rides, logger)
		handlers.sessions = svc.Sessions
	case types.DriverService:
		if svc.Hub == nil || svc.Tokens == nil {
			return nil, errors.New("connection hub and token checker are required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.DriverService)
		handlers.push = handler.NewDriverPush(svc.Hub, cfg.Mode.String(), logger)
		authOn = true
	case types.AuthService:
		if svc.Auth == nil || svc.Tokens == nil {
			return nil, errors.New("auth service is required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.AuthService)
		handlers.auth = handler.NewAuth(svc.Auth, logger)
		authOn = true
	case types.DriverAgent:
		if svc.Dashboard == nil {
			return nil, errors.New("driver session is required")
		}
		// the dashboard is for the operator on this machine only
		addr = fmt.Sprintf(serverIPAddress, "127.0.0.1", cfg.Services.DriverAgent)
		handlers.dashboard = handler.NewDashboard(svc.Dashboard, svc.Device, logger)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	mid := middleware.NewMiddleware(svc.Tokens, logger)

	api := &API{
		mode: cfg.Mode,

		mux:    http.NewServeMux(),
		routes: handlers,
		m:      mid,
		authOn: authOn,
		addr:   addr,
		cfg:    cfg,
		log:    logger,
	}

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	setupRoutes(api.mux, api.routes, api.m, api.mode, api.log)

	return api, nil
}

func (a *API) Addr() string {
	return a.addr
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler exposes the full middleware chain, mostly for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	var h http.Handler = a.mux
	if a.authOn {
		h = a.m.Auth(h)
	}
	h = a.m.Logging(h)
	h = a.m.Metrics(a.mode.String())(h)
	return a.m.Recover(a.m.RequestID(h))
}
