package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

type AuthService struct {
	driverRepo   DriverRepo
	tokenService TokenProvider
	log          logger.Logger
}

func NewAuthService(driverRepo DriverRepo, tokenServ TokenProvider, log logger.Logger) *AuthService {
	return &AuthService{
		driverRepo:   driverRepo,
		tokenService: tokenServ,
		log:          log,
	}
}

// Login checks the driver's password and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Token, error) {
	ctx = wrap.WithAction(ctx, "driver_login")

	// Проверяем существует ли водитель
	creds, err := s.driverRepo.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, types.ErrDriverNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrap.Error(ctx, err)
	}
	ctx = wrap.WithDriverID(ctx, creds.Profile.ID.String())

	// Проверяем пароль
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.log.Warn(ctx, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(ctx, &creds.Profile)
	if err != nil {
		s.log.Error(wrap.ErrorCtx(ctx, err), "failed to generate token", err)
		return nil, ErrTokenGenerateFail
	}

	s.log.Info(ctx, "driver logged in")
	return token, nil
}

// RoleCheck validates an access token and returns the user it belongs to.
func (s *AuthService) RoleCheck(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokenService.Validate(ctx, token)
	if err != nil {
		s.log.Debug(ctx, "access token is invalid", "error", err.Error())
		if errors.Is(err, ErrExpToken) {
			return nil, ErrExpToken
		}
		return nil, ErrInvalidToken
	}

	if claims.TokenType != models.AccessToken {
		return nil, ErrInvalidToken
	}

	return &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     types.UserRole(claims.Role),
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error) {
	ctx = wrap.WithDriverID(wrap.WithAction(ctx, "driver_profile"), driverID.String())

	profile, err := s.driverRepo.GetProfile(ctx, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return profile, nil
}

// HashPassword returns the bcrypt hash stored in drivers.password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
