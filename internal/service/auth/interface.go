package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
)

type DriverRepo interface {
	GetProfile(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error)
	GetCredentials(ctx context.Context, username string) (*models.DriverCredentials, error)
}

type TokenProvider interface {
	Generate(ctx context.Context, driver *models.DriverProfile) (*models.Token, error)
	Validate(ctx context.Context, token string) (*models.CustomClaims, error)
}
