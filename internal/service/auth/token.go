package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

type TokenService struct {
	AccessTTL time.Duration
	secret    string
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	return &TokenService{
		AccessTTL: accessTTL,
		secret:    secret,
		now:       time.Now,
	}
}

func (s *TokenService) getSecret() string {
	return s.secret
}

// Generate signs an HS256 access token for the driver.
func (s *TokenService) Generate(ctx context.Context, driver *models.DriverProfile) (*models.Token, error) {
	ctx = wrap.WithAction(ctx, "generate_token")
	if driver == nil {
		return nil, wrap.Error(ctx, errors.New("driver is nil"))
	}

	issuedAt := s.now().UTC()
	exp := issuedAt.Add(s.AccessTTL)

	token, err := s.signClaims(NewAccessClaim(driver, issuedAt, s.AccessTTL, uuid.New()))
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return &models.Token{
		AccessToken: token,
		ExpiresAt:   exp,
		Role:        types.RoleDriver.String(),
		UserID:      driver.ID,
	}, nil
}

// Validate validates the given JWT token string, returning the custom claims if valid.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.CustomClaims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsedToken, err := jwt.ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.getSecret()), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	typ, _ := mc["typ"].(string)
	if typ != models.AccessToken {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userID, err := uuidClaim(mc, "user_id")
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	tokenID, err := uuidClaim(mc, "jti")
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'exp' in token claims", ErrInvalidToken))
	}

	return &models.CustomClaims{
		UserID:    userID,
		TokenID:   tokenID,
		TokenType: typ,
		Username:  username,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: exp,
		},
	}, nil
}

func (s *TokenService) signClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.getSecret()))
}

func NewAccessClaim(driver *models.DriverProfile, issuedAt time.Time, accessTTL time.Duration, tokenID uuid.UUID) jwt.Claims {
	return jwt.MapClaims{
		"typ":      models.AccessToken,
		"jti":      tokenID.String(),
		"user_id":  driver.ID.String(),
		"username": driver.Username,
		"role":     types.RoleDriver.String(),
		"iat":      issuedAt.Unix(),
		"exp":      issuedAt.Add(accessTTL).Unix(),
	}
}

func uuidClaim(mc jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := mc[key].(string)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing '%s' in token claims", ErrInvalidToken, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid '%s' in token claims", ErrInvalidToken, key)
	}
	return id, nil
}
