package ride

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/postgres"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/validator"
)

type Config struct {
	FixedCharge      float64
	DefaultLatitude  float64
	DefaultLongitude float64
}

// ValidationError lists the booking fields that are missing or invalid.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return "invalid booking: " + strings.Join(keys, ", ")
}

type RideService struct {
	repo    RideRepo
	events  EventPublisher
	cfg     Config
	service string
	logger  logger.Logger
}

func NewRideService(repo RideRepo, events EventPublisher, cfg Config, service string, logger logger.Logger) *RideService {
	return &RideService{
		repo:    repo,
		events:  events,
		cfg:     cfg,
		service: service,
		logger:  logger,
	}
}

// SubmitRequest books a pending ride at the fixed charge.
func (s *RideService) SubmitRequest(ctx context.Context, sess Session, req models.NewRideRequest) (*models.RideRequest, error) {
	ctx = wrap.WithAction(ctx, "submit_ride_request")

	v := validator.New()
	validateBooking(v, req)
	if !v.Valid() {
		return nil, &ValidationError{Fields: v.Errors}
	}

	loc := s.resolveLocation(ctx, sess)
	requesterID := s.ensureRequesterID(ctx, sess)
	if requesterID != nil {
		ctx = wrap.WithUserID(ctx, *requesterID)
	}

	ride := &models.RideRequest{
		Name:          strings.TrimSpace(req.Name),
		Age:           req.Age,
		Address:       strings.TrimSpace(req.Address),
		Phone:         optional(req.Phone),
		AmbulanceType: req.AmbulanceType,
		VehicleType:   req.VehicleType,
		Hospital:      req.Hospital,
		Notes:         optional(req.Notes),
		Charge:        s.cfg.FixedCharge,
		Status:        types.StatusPending,
		Latitude:      &loc.Latitude,
		Longitude:     &loc.Longitude,
		RequesterID:   requesterID,
	}

	created, err := s.repo.Create(ctx, ride)
	if err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to insert ride request", err)
		return nil, wrap.Error(ctx, types.NewSubmissionError(postgres.Message(err), err))
	}
	if created == nil {
		return nil, wrap.Error(ctx, types.NewSubmissionError("no data returned", nil))
	}

	ctx = wrap.WithRideID(ctx, created.ID.String())
	metrics.RecordRide(s.service, created.Status.String())
	s.logger.Info(ctx, "ride request created", "hospital", created.Hospital)

	if sess != nil {
		if err := sess.Set(ctx, models.SessionKeyLastRideID, created.ID.String()); err != nil {
			s.logger.Warn(ctx, "failed to remember last ride", "error", err.Error())
		}
	}

	if s.events != nil {
		msg := models.RideRequestedMessage{
			Ride:          *created,
			CorrelationID: correlationID(ctx),
			Timestamp:     time.Now().UTC(),
		}
		if err := s.events.PublishRideRequested(ctx, msg); err != nil {
			s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to announce ride request", err)
		}
	}

	return created, nil
}

// GetStatus returns the ride with its assigned driver, if any.
func (s *RideService) GetStatus(ctx context.Context, rideID string) (*models.RideWithDriver, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "get_ride_status"), rideID)

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, &types.LookupError{RideID: rideID, Message: "invalid ride id", Err: fmt.Errorf("%w: %w", types.ErrRideNotFound, err)}
	}

	ride, err := s.repo.GetWithDriver(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrRideNotFound) {
			return nil, &types.LookupError{RideID: rideID, Err: err}
		}
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to read ride", err)
		return nil, wrap.Error(ctx, &types.LookupError{RideID: rideID, Message: postgres.Message(err), Err: err})
	}

	return ride, nil
}

// Cancel withdraws a pending or accepted ride on behalf of the requester.
func (s *RideService) Cancel(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "cancel_ride"), rideID.String())

	ride, err := s.repo.Cancel(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordRide(s.service, ride.Status.String())
	s.logger.Info(ctx, "ride cancelled by requester")

	if s.events != nil {
		msg := models.RideCancelledMessage{
			RideID:        ride.ID,
			CorrelationID: correlationID(ctx),
			Timestamp:     time.Now().UTC(),
		}
		if err := s.events.PublishRideCancelled(ctx, msg); err != nil {
			s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to announce cancellation", err)
		}
	}

	return ride, nil
}

// SaveLocation caches the requester's device position for the next booking.
func (s *RideService) SaveLocation(ctx context.Context, sess Session, loc models.Location) error {
	ctx = wrap.WithAction(ctx, "save_requester_location")

	v := validator.New()
	v.Check(loc.Latitude >= -90 && loc.Latitude <= 90, "latitude", "must be between -90 and 90")
	v.Check(loc.Longitude >= -180 && loc.Longitude <= 180, "longitude", "must be between -180 and 180")
	if !v.Valid() {
		return &ValidationError{Fields: v.Errors}
	}

	raw, err := json.Marshal(loc)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("encode location: %w", err))
	}
	if err := sess.Set(ctx, models.SessionKeyUserLocation, string(raw)); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

func validateBooking(v *validator.Validator, req models.NewRideRequest) {
	v.Check(validator.NotBlank(req.Name), "name", "must be provided")
	v.Check(validator.NotBlank(req.Address), "address", "must be provided")
	v.Check(req.Age > 0, "age", "must be greater than 0")
	v.Check(validator.NotBlank(req.AmbulanceType), "ambulance_type", "must be provided")
	v.Check(validator.NotBlank(req.VehicleType), "vehicle_type", "must be provided")
	v.Check(validator.NotBlank(req.Hospital), "hospital", "must be provided")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func correlationID(ctx context.Context) string {
	if id := wrap.FromContext(ctx).RequestID; id != "" {
		return id
	}
	return uuid.NewString()
}
