package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/driversession"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/validator"
	"github.com/google/uuid"
)

type DriverSession interface {
	Snapshot() driversession.Snapshot
	Refresh(ctx context.Context) error
	Accept(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error)
	AdvanceStatus(ctx context.Context, target types.RideStatus) (*models.RideRequest, error)
	Logout(ctx context.Context) error
}

// DeviceLocation receives samples and permission answers from the driver's device.
type DeviceLocation interface {
	Report(ctx context.Context, loc models.Location, accuracy float64) error
	SetPermission(ctx context.Context, granted bool) error
}

// Dashboard is the driver agent's local operator surface.
type Dashboard struct {
	session DriverSession
	device  DeviceLocation // nil unless the agent samples a real device
	l       logger.Logger
}

func NewDashboard(session DriverSession, device DeviceLocation, l logger.Logger) *Dashboard {
	return &Dashboard{
		session: session,
		device:  device,
		l:       l,
	}
}

// State godoc
// @Summary      Dashboard state
// @Description  Profile, open requests, current ride, tracking flag and recent notices
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  driversession.Snapshot
// @Router       /dashboard [get]
func (h *Dashboard) State(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(wrap.WithAction(r.Context(), "dashboard_state"), w)
}

// Refresh godoc
// @Summary      Reload rides
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  driversession.Snapshot
// @Router       /dashboard/refresh [post]
func (h *Dashboard) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRefresh)

	if err := h.session.Refresh(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to refresh dashboard", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.writeSnapshot(ctx, w)
}

// Accept godoc
// @Summary      Accept a ride
// @Description  Claims a pending ride. 409 means another driver was faster.
// @Tags         Dashboard
// @Produce      json
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.RideRequest
// @Failure      409      {object}  map[string]string
// @Router       /dashboard/rides/{ride_id}/accept [post]
func (h *Dashboard) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionAccept)

	rideID, err := uuid.Parse(r.PathValue("ride_id"))
	if err != nil {
		failedValidationResponse(w, map[string]string{"ride_id": "must be a valid UUID"})
		return
	}

	ride, err := h.session.Accept(ctx, rideID)
	if err != nil {
		h.l.Warn(ctx, "accept failed", "ride_id", rideID.String(), "error", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// AdvanceStatus godoc
// @Summary      Advance the current ride
// @Description  Moves the current ride to its next status
// @Tags         Dashboard
// @Accept       json
// @Produce      json
// @Param        request  body      dto.AdvanceStatusRequest  true  "Target status"
// @Success      200      {object}  models.RideRequest
// @Failure      409      {object}  map[string]string
// @Router       /dashboard/ride/status [post]
func (h *Dashboard) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionAdvanceStatus)

	req := &dto.AdvanceStatusRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Struct(req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	ride, err := h.session.AdvanceStatus(ctx, req.Status)
	if err != nil {
		h.l.Warn(ctx, "status update failed", "status", req.Status.String(), "error", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Logout godoc
// @Summary      End the session
// @Description  Clears stored credentials and stops the driver session
// @Tags         Dashboard
// @Success      204
// @Router       /dashboard/logout [post]
func (h *Dashboard) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionSessionTeardown)

	if err := h.session.Logout(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to log out", err)
		internalErrorResponse(w, "failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReportDeviceLocation godoc
// @Summary      Publish a device position
// @Description  Stores the device's latest position for status updates and location reports. Only available with AGENT_GEO_MODE=device.
// @Tags         Dashboard
// @Accept       json
// @Param        request  body  dto.DeviceLocationRequest  true  "Position sample"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /dashboard/device/location [put]
func (h *Dashboard) ReportDeviceLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "report_device_location")

	if h.device == nil {
		errorResponse(w, http.StatusNotFound, "device location is not enabled")
		return
	}

	req := &dto.DeviceLocationRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Struct(req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.device.Report(ctx, req.ToModel(), req.Accuracy); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store device position", err)
		internalErrorResponse(w, "failed to store device position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDevicePermission godoc
// @Summary      Answer the location prompt
// @Description  Grants or denies location access. A denial stops location reporting.
// @Tags         Dashboard
// @Accept       json
// @Param        request  body  dto.DevicePermissionRequest  true  "Permission"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /dashboard/device/permission [put]
func (h *Dashboard) SetDevicePermission(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "set_device_permission")

	if h.device == nil {
		errorResponse(w, http.StatusNotFound, "device location is not enabled")
		return
	}

	req := &dto.DevicePermissionRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Struct(req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.device.SetPermission(ctx, *req.Granted); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store location permission", err)
		internalErrorResponse(w, "failed to store location permission")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Dashboard) writeSnapshot(ctx context.Context, w http.ResponseWriter) {
	if err := writeJSON(w, http.StatusOK, envelope{"dashboard": h.session.Snapshot()}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
