package driversession

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

// memStore mirrors the conditional predicates of the SQL repository.
type memStore struct {
	mu      sync.Mutex
	rides   map[uuid.UUID]*models.RideRequest
	drivers map[uuid.UUID]*models.DriverProfile

	locationWrites   []models.LocationReport
	rejectedWrites   int
	statusUpdates    []models.StatusUpdate
	failProfileCalls int
}

func newMemStore() *memStore {
	return &memStore{
		rides:   map[uuid.UUID]*models.RideRequest{},
		drivers: map[uuid.UUID]*models.DriverProfile{},
	}
}

func (s *memStore) addDriver(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.drivers[id] = &models.DriverProfile{ID: id, Name: name, Username: name, IsAvailable: true}
	return id
}

func (s *memStore) addRide(status types.RideStatus, driverID *uuid.UUID) models.RideRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.RideRequest{
		ID:            uuid.New(),
		Name:          "A",
		Age:           30,
		Address:       "X",
		AmbulanceType: "basic",
		VehicleType:   "van",
		Hospital:      "City",
		Charge:        5000,
		Status:        status,
		DriverID:      driverID,
		CreatedAt:     time.Now(),
	}
	s.rides[r.ID] = r
	return *r.Clone()
}

func (s *memStore) ride(id uuid.UUID) models.RideRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rides[id].Clone()
}

func (s *memStore) setStatus(id uuid.UUID, st types.RideStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rides[id].Status = st
}

func (s *memStore) writes() []models.LocationReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.locationWrites)
}

func (s *memStore) rejected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejectedWrites
}

func (s *memStore) GetProfile(_ context.Context, id uuid.UUID) (*models.DriverProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failProfileCalls > 0 {
		s.failProfileCalls--
		return nil, errors.New("store unavailable")
	}
	d, ok := s.drivers[id]
	if !ok {
		return nil, types.ErrDriverNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *memStore) GetActiveForDriver(_ context.Context, id uuid.UUID) (*models.RideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rides {
		if r.IsAssignedTo(id) && r.Status.IsActive() {
			return r.Clone(), nil
		}
	}
	return nil, nil
}

func (s *memStore) ListOpen(context.Context) ([]models.RideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RideRequest
	for _, r := range s.rides {
		if r.Status == types.StatusPending && r.DriverID == nil {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}

func (s *memStore) Accept(_ context.Context, rideID, driverID uuid.UUID) (*models.RideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[rideID]
	if !ok || r.DriverID != nil || r.Status != types.StatusPending {
		return nil, fmt.Errorf("accept %s: %w", rideID, types.ErrAcceptanceConflict)
	}
	id := driverID
	r.DriverID = &id
	r.Status = types.StatusAccepted
	if d, ok := s.drivers[driverID]; ok {
		d.IsAvailable = false
	}
	return r.Clone(), nil
}

func (s *memStore) UpdateStatus(_ context.Context, upd models.StatusUpdate) (*models.RideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusUpdates = append(s.statusUpdates, upd)
	r, ok := s.rides[upd.RideID]
	if !ok || !r.IsAssignedTo(upd.DriverID) || r.Status != upd.From {
		return nil, types.ErrTransitionRejected
	}
	r.Status = upd.To
	if upd.Location != nil {
		lat, lng := upd.Location.Latitude, upd.Location.Longitude
		r.DriverLatitude, r.DriverLongitude = &lat, &lng
	}
	if upd.To == types.StatusCompleted {
		if d, ok := s.drivers[upd.DriverID]; ok {
			d.IsAvailable = true
		}
	}
	return r.Clone(), nil
}

func (s *memStore) UpdateDriverLocation(_ context.Context, rep models.LocationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[rep.RideID]
	if !ok || !r.IsAssignedTo(rep.DriverID) || !r.Status.IsTracking() {
		s.rejectedWrites++
		return types.ErrRideNotFound
	}
	lat, lng := rep.Latitude, rep.Longitude
	r.DriverLatitude, r.DriverLongitude = &lat, &lng
	s.locationWrites = append(s.locationWrites, rep)
	return nil
}

type fixedGeo struct{ loc models.Location }

func (g fixedGeo) Current(context.Context) (models.Position, error) {
	return models.Position{Location: g.loc, Timestamp: time.Now()}, nil
}

type deniedGeo struct{}

func (deniedGeo) Current(context.Context) (models.Position, error) {
	return models.Position{}, types.ErrPermissionDenied
}

// hangingGeo never answers before the deadline.
type hangingGeo struct{}

func (hangingGeo) Current(ctx context.Context) (models.Position, error) {
	<-ctx.Done()
	return models.Position{}, types.ErrLocationTimeout
}

type memSession struct {
	mu      sync.Mutex
	deleted []string
}

func (s *memSession) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys...)
	return nil
}

type memSink struct {
	mu      sync.Mutex
	reports []models.LocationReport
}

func (s *memSink) PublishLocation(_ context.Context, r models.LocationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// fakePush captures the callbacks so tests can deliver messages.
type fakePush struct {
	mu        sync.Mutex
	onMessage func(models.PushMessage)
	closed    bool
}

func (p *fakePush) connect(_ context.Context, _ uuid.UUID, onMessage func(models.PushMessage), onStatus func(types.ConnStatus)) (io.Closer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMessage = onMessage
	onStatus(types.ConnConnected)
	return p, nil
}

func (p *fakePush) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePush) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePush) deliver(msg models.PushMessage) {
	p.mu.Lock()
	fn := p.onMessage
	p.mu.Unlock()
	fn(msg)
}
