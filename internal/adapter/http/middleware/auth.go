package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

var errBadAuthHeader = errors.New("invalid Authorization header format")

// Auth resolves the bearer token into a models.User on the request context.
// Requests without a header continue as the anonymous user; RequireRoles
// decides whether that is enough.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(models.WithUser(ctx, models.AnonymousUser())))
			return
		}

		token, err := bearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := m.auth.RoleCheck(ctx, token)
		if err != nil || user == nil {
			m.log.Warn(wrap.ErrorCtx(ctx, err), "token rejected", "error", errString(err))
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ctx = wrap.WithUserID(ctx, user.ID.String())
		if user.Role == types.RoleDriver {
			ctx = wrap.WithDriverID(ctx, user.ID.String())
		}

		next.ServeHTTP(w, r.WithContext(models.WithUser(ctx, user)))
	})
}

// RequireRoles lets through authenticated users holding one of roles.
// With no roles any authenticated user passes.
func (m *Middleware) RequireRoles(next http.HandlerFunc, roles ...types.UserRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := models.UserFromContext(r.Context())
		switch {
		case user == nil || user.IsAnonymous():
			errorResponse(w, http.StatusUnauthorized, "authorization required")
		case len(roles) > 0 && !slices.Contains(roles, user.Role):
			errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadAuthHeader
	}
	return token, nil
}

func errString(err error) string {
	if err == nil {
		return "no user for token"
	}
	return err.Error()
}
