package microservices

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/session"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	redisclient "github.com/Temutjin2k/ambulance-dispatch/pkg/redis"
)

// newSessionStore picks the session backend from config. The returned close
// function is never nil.
func newSessionStore(ctx context.Context, cfg config.Config, log logger.Logger) (session.Store, func(), error) {
	ctx = wrap.WithAction(ctx, "session_store_init")

	if cfg.Session.Store == "memory" {
		log.Warn(ctx, "using in-memory session store, state is lost on restart")
		return session.NewMemoryStore(), func() {}, nil
	}

	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info(ctx, "connected to redis", "address", cfg.Redis.GetAddr())

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn(ctx, "failed to close redis client", "error", err.Error())
		}
	}
	return session.NewRedisStore(client.Client, cfg.Session.Prefix, cfg.Session.TTL), closeFn, nil
}
