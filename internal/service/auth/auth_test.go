package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
)

type fakeDrivers struct {
	creds map[string]*models.DriverCredentials
}

func (f *fakeDrivers) GetProfile(_ context.Context, id uuid.UUID) (*models.DriverProfile, error) {
	for _, c := range f.creds {
		if c.Profile.ID == id {
			p := c.Profile
			return &p, nil
		}
	}
	return nil, types.ErrDriverNotFound
}

func (f *fakeDrivers) GetCredentials(_ context.Context, username string) (*models.DriverCredentials, error) {
	c, ok := f.creds[username]
	if !ok {
		return nil, types.ErrDriverNotFound
	}
	return c, nil
}

func newTestService(t *testing.T) (*AuthService, *models.DriverProfile) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("ambulance1"), bcrypt.MinCost)
	require.NoError(t, err)

	profile := models.DriverProfile{ID: uuid.New(), Name: "Ravi", Username: "ravi"}
	repo := &fakeDrivers{creds: map[string]*models.DriverCredentials{
		"ravi": {Profile: profile, PasswordHash: string(hash)},
	}}

	log := logger.New(io.Discard, "test", logger.LevelError)
	return NewAuthService(repo, NewTokenService("test-secret", time.Hour), log), &profile
}

func TestLoginIssuesDriverToken(t *testing.T) {
	svc, profile := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "ravi", "ambulance1")
	require.NoError(t, err)
	require.Equal(t, profile.ID, token.UserID)
	require.Equal(t, types.RoleDriver.String(), token.Role)

	user, err := svc.RoleCheck(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, profile.ID, user.ID)
	require.Equal(t, "ravi", user.Username)
	require.Equal(t, types.RoleDriver, user.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ravi", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "ambulance1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc, profile := newTestService(t)

	got, err := svc.Profile(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, "Ravi", got.Name)

	_, err = svc.Profile(context.Background(), uuid.New())
	require.ErrorIs(t, err, types.ErrDriverNotFound)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	ts := NewTokenService("test-secret", time.Hour)
	driver := &models.DriverProfile{ID: uuid.New(), Username: "ravi"}

	other := NewTokenService("other-secret", time.Hour)
	foreign, err := other.Generate(ctx, driver)
	require.NoError(t, err)
	_, err = ts.Validate(ctx, foreign.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, NewAccessClaim(driver, time.Now(), time.Hour, uuid.New()))
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Validate(ctx, unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ts.Validate(ctx, "not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	ctx := context.Background()
	ts := NewTokenService("test-secret", time.Minute)
	ts.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := ts.Generate(ctx, &models.DriverProfile{ID: uuid.New()})
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.Validate(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrExpToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-pass")))
}
