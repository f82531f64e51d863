package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/validator"
	"github.com/google/uuid"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Token, error)
	Profile(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error)
}

type Auth struct {
	auth AuthService
	l    logger.Logger
}

func NewAuth(service AuthService, l logger.Logger) *Auth {
	return &Auth{
		auth: service,
		l:    l,
	}
}

// Login godoc
// @Summary      Driver login
// @Description  Exchanges driver credentials for an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LoginRequest  true  "Credentials"
// @Success      200      {object}  models.Token
// @Failure      401      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "login_driver")

	req := &dto.LoginRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Struct(req)
	v.Check(validator.Matches(req.Username, validator.UsernameRX), "username", "must be 3-64 letters, digits, dots, dashes or underscores")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	token, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to login driver", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"access_token": token.AccessToken,
		"expires_at":   token.ExpiresAt,
		"role":         token.Role,
		"user_id":      token.UserID,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Profile godoc
// @Summary      Current driver
// @Description  Returns the authenticated driver
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_profile")

	user := models.UserFromContext(ctx)
	if user == nil {
		h.l.Warn(ctx, "failed to get profile")
		errorResponse(w, http.StatusNotFound, "failed to get profile")
		return
	}

	profile, err := h.auth.Profile(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load driver profile", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	user.Name = profile.Name
	user.Username = profile.Username

	response := envelope{
		"user": user,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
