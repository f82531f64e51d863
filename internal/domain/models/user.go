package models

import (
	"context"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/google/uuid"
)

// User is the authenticated caller of an HTTP request.
type User struct {
	ID       uuid.UUID      `json:"id"`
	Username string         `json:"username,omitempty"`
	Name     string         `json:"name,omitempty"`
	Role     types.UserRole `json:"role"`
}

func AnonymousUser() *User {
	return &User{Role: types.RoleAnonymous}
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.Role == types.RoleAnonymous
}

type userCtxKey struct{}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
