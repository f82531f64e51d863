package dto

import (
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
)

// CreateRideRequest is the booking form submitted by a requester.
type CreateRideRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Age           int    `json:"age" validate:"gt=0,lte=150"`
	Address       string `json:"address" validate:"required,max=500"`
	Phone         string `json:"phone,omitempty" validate:"max=32"`
	AmbulanceType string `json:"ambulance_type" validate:"required,max=64"`
	VehicleType   string `json:"vehicle_type" validate:"required,max=64"`
	Hospital      string `json:"hospital" validate:"required,max=255"`
	Notes         string `json:"notes,omitempty" validate:"max=2000"`
}

func (r *CreateRideRequest) ToModel() models.NewRideRequest {
	return models.NewRideRequest{
		Name:          r.Name,
		Age:           r.Age,
		Address:       r.Address,
		Phone:         r.Phone,
		AmbulanceType: r.AmbulanceType,
		VehicleType:   r.VehicleType,
		Hospital:      r.Hospital,
		Notes:         r.Notes,
	}
}

type CreateRideResponse struct {
	RideID  string  `json:"ride_id"`
	Status  string  `json:"status"`
	Charge  float64 `json:"charge"`
	Message string  `json:"message"`
}

type SaveLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (r *SaveLocationRequest) ToModel() models.Location {
	return models.Location{Latitude: r.Latitude, Longitude: r.Longitude}
}
