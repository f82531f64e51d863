package models

import (
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/google/uuid"
)

// RideRequest is one ambulance transport task as stored in ride_requests.
type RideRequest struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Age           int              `json:"age"`
	Address       string           `json:"address"`
	Phone         *string          `json:"phone,omitempty"`
	AmbulanceType string           `json:"ambulance_type"`
	VehicleType   string           `json:"vehicle_type"`
	Hospital      string           `json:"hospital"`
	Notes         *string          `json:"notes,omitempty"`
	Charge        float64          `json:"charge"`
	Status        types.RideStatus `json:"status"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	DriverID        *uuid.UUID `json:"driver_id,omitempty"`
	DriverLatitude  *float64   `json:"driver_latitude,omitempty"`
	DriverLongitude *float64   `json:"driver_longitude,omitempty"`

	RequesterID *string `json:"requester_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAssignedTo reports whether the ride is held by driverID.
func (r *RideRequest) IsAssignedTo(driverID uuid.UUID) bool {
	return r != nil && r.DriverID != nil && *r.DriverID == driverID
}

// Clone returns a copy that shares no pointers with r.
func (r *RideRequest) Clone() *RideRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Phone = cloneString(r.Phone)
	c.Notes = cloneString(r.Notes)
	c.RequesterID = cloneString(r.RequesterID)
	c.Latitude = cloneFloat(r.Latitude)
	c.Longitude = cloneFloat(r.Longitude)
	c.DriverLatitude = cloneFloat(r.DriverLatitude)
	c.DriverLongitude = cloneFloat(r.DriverLongitude)
	if r.DriverID != nil {
		id := *r.DriverID
		c.DriverID = &id
	}
	return &c
}

// RideWithDriver is a ride joined with its assigned driver's profile.
type RideWithDriver struct {
	RideRequest
	Driver *DriverProfile `json:"driver,omitempty"`
}

// NewRideRequest holds the requester-supplied booking fields.
type NewRideRequest struct {
	Name          string
	Age           int
	Address       string
	Phone         string
	AmbulanceType string
	VehicleType   string
	Hospital      string
	Notes         string
}

// StatusUpdate is a conditional status change issued by the assigned driver.
type StatusUpdate struct {
	RideID   uuid.UUID
	DriverID uuid.UUID
	From     types.RideStatus
	To       types.RideStatus
	Location *Location
}

// LocationReport is a driver position write scoped to its ride.
type LocationReport struct {
	RideID   uuid.UUID `json:"ride_id"`
	DriverID uuid.UUID `json:"driver_id"`
	Location
	RecordedAt time.Time `json:"recorded_at"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
