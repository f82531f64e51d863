package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverProfile is a row of the drivers table without credentials.
type DriverProfile struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	VehicleNumber *string   `json:"vehicle_number,omitempty"`
	LicenseNumber *string   `json:"license_number,omitempty"`
	Address       *string   `json:"address,omitempty"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DriverCredentials is what the auth service needs to verify a login.
type DriverCredentials struct {
	Profile      DriverProfile
	PasswordHash string
}
