package dto

import (
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

type AdvanceStatusRequest struct {
	Status types.RideStatus `json:"status" validate:"required,oneof=en_route picked_up completed"`
}

// DeviceLocationRequest is a position sample posted by the driver's device.
type DeviceLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64 `json:"accuracy,omitempty" validate:"gte=0"`
}

func (r *DeviceLocationRequest) ToModel() models.Location {
	return models.Location{Latitude: r.Latitude, Longitude: r.Longitude}
}

type DevicePermissionRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}
