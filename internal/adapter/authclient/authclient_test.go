package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

func TestLoginAndMe(t *testing.T) {
	driverID := uuid.New()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "ravi" || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.Token{AccessToken: "tok", Role: "driver", UserID: driverID})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user": models.User{ID: driverID, Role: types.RoleDriver}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	ctx := context.Background()

	tok, err := c.Login(ctx, "ravi", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok", tok.AccessToken)
	require.Equal(t, driverID, tok.UserID)

	user, err := c.Me(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, types.RoleDriver, user.Role)

	_, err = c.Login(ctx, "ravi", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Me(ctx, "other")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Login(context.Background(), "a", "b")
	require.ErrorContains(t, err, "boom")
}
