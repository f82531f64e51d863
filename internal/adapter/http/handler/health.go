package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

// HealthCheck probes one dependency, e.g. pgxpool.Pool.Ping.
type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

type Health struct {
	serviceName string
	checks      map[string]HealthCheck
	started     time.Time
	log         logger.Logger
}

func NewHealth(serviceName string, checks map[string]HealthCheck, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		checks:      checks,
		started:     time.Now(),
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports the service mode, uptime and the state of its dependencies. Answers 503 when a dependency check fails.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	status, code := "available", http.StatusOK
	deps := make(map[string]string, len(a.checks))

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := a.checks[name](cctx)
		cancel()
		if err != nil {
			a.log.Warn(ctx, "dependency check failed", "dependency", name, "error", err.Error())
			deps[name] = "unavailable"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	response := envelope{
		"status": status,
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"uptime":       time.Since(a.started).Round(time.Second).String(),
		},
	}
	if len(deps) > 0 {
		response["dependencies"] = deps
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
	}
}
