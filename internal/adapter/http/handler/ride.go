package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/session"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/service/ride"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/validator"
	"github.com/google/uuid"
)

type RideService interface {
	SubmitRequest(ctx context.Context, sess ride.Session, req models.NewRideRequest) (*models.RideRequest, error)
	GetStatus(ctx context.Context, rideID string) (*models.RideWithDriver, error)
	Cancel(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error)
	SaveLocation(ctx context.Context, sess ride.Session, loc models.Location) error
}

type Ride struct {
	service RideService
	l       logger.Logger
}

func NewRide(service RideService, l logger.Logger) *Ride {
	return &Ride{
		service: service,
		l:       l,
	}
}

// SubmitRequest godoc
// @Summary      Book an ambulance
// @Description  Creates a pending ride request with a fixed charge. The response carries X-Session-ID, which the caller should send back on later requests.
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header    string                 false  "Requester session"
// @Param        request       body      dto.CreateRideRequest  true   "Booking form"
// @Success      201           {object}  dto.CreateRideResponse
// @Failure      400           {object}  map[string]string
// @Failure      422           {object}  map[string]any
// @Router       /rides [post]
func (h *Ride) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "submit_ride_request")

	req := &dto.CreateRideRequest{}
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

	sess := session.FromContext(ctx)
	if sess == nil {
		internalErrorResponse(w, "session is not available")
		return
	}

	created, err := h.service.SubmitRequest(ctx, sess, req.ToModel())
	if err != nil {
		var verr *ride.ValidationError
		if errors.As(err, &verr) {
			failedValidationResponse(w, verr.Fields)
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to submit ride request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride": dto.CreateRideResponse{
			RideID:  created.ID.String(),
			Status:  created.Status.String(),
			Charge:  created.Charge,
			Message: "ambulance requested",
		},
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// GetStatus godoc
// @Summary      Ride status
// @Description  Returns the ride with its assigned driver, if any
// @Tags         Rides
// @Produce      json
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.RideWithDriver
// @Failure      404      {object}  map[string]string
// @Router       /rides/{ride_id} [get]
func (h *Ride) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride_status")

	found, err := h.service.GetStatus(ctx, r.PathValue("ride_id"))
	if err != nil {
		if code := GetCode(err); code != http.StatusNotFound {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get ride status", err)
		}
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": found}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Cancel godoc
// @Summary      Cancel a ride
// @Description  Cancels a ride that is still pending or accepted
// @Tags         Rides
// @Produce      json
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  map[string]any
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /rides/{ride_id}/cancel [post]
func (h *Ride) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "cancel_ride")

	rideID, err := uuid.Parse(r.PathValue("ride_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid ride id")
		return
	}

	cancelled, err := h.service.Cancel(ctx, rideID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel ride", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride_id": cancelled.ID,
		"status":  cancelled.Status,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// SaveLocation godoc
// @Summary      Store requester location
// @Description  Caches the requester's coordinates in the session for the next booking
// @Tags         Rides
// @Accept       json
// @Param        X-Session-ID  header  string                   false  "Requester session"
// @Param        request       body    dto.SaveLocationRequest  true   "Coordinates"
// @Success      204
// @Failure      422  {object}  map[string]any
// @Router       /session/location [put]
func (h *Ride) SaveLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "save_requester_location")

	req := &dto.SaveLocationRequest{}
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

	sess := session.FromContext(ctx)
	if sess == nil {
		internalErrorResponse(w, "session is not available")
		return
	}

	if err := h.service.SaveLocation(ctx, sess, req.ToModel()); err != nil {
		var verr *ride.ValidationError
		if errors.As(err, &verr) {
			failedValidationResponse(w, verr.Fields)
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to save location", err)
		internalErrorResponse(w, "failed to save location")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
