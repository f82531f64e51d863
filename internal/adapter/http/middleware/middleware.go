package middleware

import (
	"context"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
)

// TokenVerifier resolves a bearer token to the caller. Implemented by auth.AuthService.
type TokenVerifier interface {
	RoleCheck(ctx context.Context, token string) (*models.User, error)
}

type Middleware struct {
	auth TokenVerifier
	log  logger.Logger
}

// NewMiddleware builds the shared middleware set. auth may be nil for modes
// that serve no protected routes.
func NewMiddleware(auth TokenVerifier, log logger.Logger) *Middleware {
	return &Middleware{auth: auth, log: log}
}
