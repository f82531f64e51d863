package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
	ws "github.com/Temutjin2k/ambulance-dispatch/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const pushPingInterval = 25 * time.Second

// DriverPush keeps one websocket per logged-in driver. Ride events reach
// drivers through the hub, not through this handler.
type DriverPush struct {
	hub         *ws.ConnectionHub
	upgrader    websocket.Upgrader
	serviceName string
	l           logger.Logger
}

func NewDriverPush(hub *ws.ConnectionHub, serviceName string, l logger.Logger) *DriverPush {
	return &DriverPush{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		serviceName: serviceName,
		l:           l,
	}
}

// Connect godoc
// @Summary      Driver push channel
// @Description  Upgrades to a websocket that receives new_ride_request and ride_cancelled messages
// @Tags         Drivers
// @Security     BearerAuth
// @Param        driver_id  path  string  true  "Driver ID"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /ws/drivers/{driver_id} [get]
func (h *DriverPush) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "driver_ws_connect")

	driverID, err := uuid.Parse(r.PathValue("driver_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	ctx = wrap.WithDriverID(ctx, driverID.String())

	user := models.UserFromContext(ctx)
	if user == nil || user.ID != driverID {
		errorResponse(w, http.StatusForbidden, "token does not belong to this driver")
		return
	}

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the response
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	conn := ws.NewConn(ctx, driverID, c)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register connection", err)
		_ = conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(h.serviceName).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(h.serviceName).Dec()
	defer h.hub.Remove(conn)

	h.l.Info(ctx, "driver connected to push channel")
	go h.keepAlive(ctx, conn)

	// Drivers never send anything meaningful; reading keeps control frames flowing
	// and tells us when the peer goes away.
	err = conn.Listen(func(json.RawMessage) error { return nil })
	h.l.Info(ctx, "driver disconnected from push channel", "reason", err.Error())
}

// keepAlive pings the driver until the connection ends; a failed ping closes
// it so Listen returns and the hub entry is dropped.
func (h *DriverPush) keepAlive(ctx context.Context, conn *ws.Conn) {
	t := time.NewTicker(pushPingInterval)
	defer t.Stop()

	for {
		select {
		case <-conn.Done():
			return
		case <-t.C:
			if err := conn.Health(); err != nil {
				h.l.Warn(ctx, "driver push channel ping failed", "error", err.Error())
				_ = conn.Close()
				return
			}
		}
	}
}
