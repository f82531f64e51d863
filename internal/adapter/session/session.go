// Package session keeps small per-client key/value state (tokens, last ride,
// cached coordinates) outside the process.
package session

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptySessionID = errors.New("session id is empty")

// Store is a namespaced key/value store. A missing key is reported with ok=false, not an error.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
}

// Session binds a Store to one session id.
type Session struct {
	store Store
	id    string
}

func New(store Store, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	return &Session{store: store, id: id}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, ok, nil
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, s.id, key, value); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *Session) Delete(ctx context.Context, keys ...string) error {
	if err := s.store.Delete(ctx, s.id, keys...); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session bound by the HTTP layer, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
