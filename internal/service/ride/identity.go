package ride

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newAnonymousID returns "user_" followed by 13 random base36 characters.
func newAnonymousID() string {
	var b strings.Builder
	b.Grow(len("user_") + 13)
	b.WriteString("user_")
	for range 13 {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

// parseLocation accepts any JSON object. Each coordinate is read from "lat"
// or "latitude" ("lng" or "longitude"), taking the first non-zero number;
// numeric strings count. A missing coordinate is 0.
func parseLocation(raw string) (models.Location, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return models.Location{}, false
	}

	return models.Location{
		Latitude:  firstNumber(m, "lat", "latitude"),
		Longitude: firstNumber(m, "lng", "longitude"),
	}, true
}

func firstNumber(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		var f float64
		switch v := m[k].(type) {
		case float64:
			f = v
		case string:
			f, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
		if f != 0 {
			return f
		}
	}
	return 0
}

// resolveLocation walks the cached location keys; the first JSON object wins.
func (s *RideService) resolveLocation(ctx context.Context, sess Session) models.Location {
	def := models.Location{Latitude: s.cfg.DefaultLatitude, Longitude: s.cfg.DefaultLongitude}
	if sess == nil {
		return def
	}

	for _, key := range models.LocationKeys {
		raw, ok, err := sess.Get(ctx, key)
		if err != nil {
			s.logger.Warn(ctx, "failed to read cached location", "key", key, "error", err.Error())
			continue
		}
		if !ok || raw == "" {
			continue
		}
		if loc, ok := parseLocation(raw); ok {
			return loc
		}
	}
	return def
}

// ensureRequesterID returns the session's anonymous identity, creating it when absent.
func (s *RideService) ensureRequesterID(ctx context.Context, sess Session) *string {
	if sess == nil {
		return nil
	}

	id, ok, err := sess.Get(ctx, models.SessionKeyUserID)
	if err != nil {
		s.logger.Warn(ctx, "failed to read requester id", "error", err.Error())
		return nil
	}
	if ok && id != "" {
		return &id
	}

	id = newAnonymousID()
	if err := sess.Set(ctx, models.SessionKeyUserID, id); err != nil {
		s.logger.Warn(ctx, "failed to store requester id", "error", err.Error())
	}
	return &id
}
