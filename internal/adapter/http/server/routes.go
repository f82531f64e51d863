package server

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/ambulance-dispatch/docs"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/middleware"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, mode types.ServiceMode, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux, mode, log)
	setupMetricsRoute(mux)

	switch mode {
	case types.RideService:
		setupRideRoutes(mux, routes, m)
	case types.DriverService:
		setupDriverRoutes(mux, routes, m)
	case types.AuthService:
		setupAuthRoutes(mux, routes, m)
	case types.DriverAgent:
		setupDashboardRoutes(mux, routes)
	}
}

// setupRideRoutes setups routes for ride service. Requesters are anonymous and
// identified by their session.
func setupRideRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	withSession := m.Session(routes.sessions)

	mux.Handle("POST /rides", withSession(http.HandlerFunc(routes.ride.SubmitRequest)))
	mux.HandleFunc("GET /rides/{ride_id}", routes.ride.GetStatus)
	mux.HandleFunc("POST /rides/{ride_id}/cancel", routes.ride.Cancel)
	mux.Handle("PUT /session/location", withSession(http.HandlerFunc(routes.ride.SaveLocation)))
}

// setupDriverRoutes setups routes for driver service
func setupDriverRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /ws/drivers/{driver_id}", m.RequireRoles(routes.push.Connect, types.RoleDriver)) // WebSocket connection for drivers
}

func setupAuthRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.HandleFunc("POST /auth/login", routes.auth.Login)
	mux.Handle("GET /auth/me", m.RequireRoles(routes.auth.Profile, types.RoleDriver))
}

func setupDashboardRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("GET /dashboard", routes.dashboard.State)
	mux.HandleFunc("POST /dashboard/refresh", routes.dashboard.Refresh)
	mux.HandleFunc("POST /dashboard/rides/{ride_id}/accept", routes.dashboard.Accept)
	mux.HandleFunc("POST /dashboard/ride/status", routes.dashboard.AdvanceStatus)
	mux.HandleFunc("POST /dashboard/logout", routes.dashboard.Logout)
	mux.HandleFunc("PUT /dashboard/device/location", routes.dashboard.ReportDeviceLocation)
	mux.HandleFunc("PUT /dashboard/device/permission", routes.dashboard.SetDevicePermission)
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func setupSwaggerRoutes(mux *http.ServeMux, mode types.ServiceMode, log logger.Logger) {
	var instanceName string

	switch mode {
	case types.RideService:
		instanceName = docs.InstanceRide
	case types.DriverService:
		instanceName = docs.InstanceDriver
	case types.AuthService:
		instanceName = docs.InstanceAuth
	case types.DriverAgent:
		instanceName = docs.InstanceAgent
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", mode)
		return
	}

	// Swagger UI endpoint
	swaggerURL := httpSwagger.InstanceName(instanceName)
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
