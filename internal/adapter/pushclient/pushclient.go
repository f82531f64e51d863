// Package pushclient subscribes the driver agent to its notification channel.
package pushclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

// TokenSource returns the bearer token presented when dialing.
type TokenSource func(ctx context.Context) (string, error)

type Client struct {
	baseURL string
	token   TokenSource
	dialer  *websocket.Dialer

	l logger.Logger
}

func New(baseURL string, token TokenSource, dialTimeout time.Duration, l logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: dialTimeout,
		},
		l: l,
	}
}

// Subscription is one open channel. Close is safe to call more than once.
type Subscription struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Connect opens the channel for driverID. onMessage runs on the read goroutine
// for every decoded message; onStatus observes connection changes.
// A dropped connection is reported once and never redialed.
func (c *Client) Connect(ctx context.Context, driverID uuid.UUID, onMessage func(models.PushMessage), onStatus func(types.ConnStatus)) (*Subscription, error) {
	const op = "pushclient.Connect"
	ctx = wrap.WithDriverID(wrap.WithAction(ctx, "push_connect"), driverID.String())

	endpoint, err := c.endpoint(driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	header := http.Header{}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: token: %w", op, err))
		}
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		notify(onStatus, types.ConnError)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrTransport, err))
	}

	notify(onStatus, types.ConnConnected)
	c.l.Info(ctx, "push channel connected", "url", endpoint)

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &Subscription{conn: conn, cancel: cancel}

	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		c.read(readCtx, conn, onMessage, onStatus)
	}()

	return sub, nil
}

func (c *Client) read(ctx context.Context, conn *websocket.Conn, onMessage func(models.PushMessage), onStatus func(types.ConnStatus)) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				notify(onStatus, types.ConnDisconnected)
				c.l.Info(ctx, "push channel closed")
				return
			}
			notify(onStatus, types.ConnError)
			c.l.Error(ctx, "push channel read failed", err)
			return
		}

		var msg models.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.l.Warn(ctx, "dropping malformed push message", "error", err.Error())
			continue
		}
		metrics.RecordPushEvent(msg.Type.String(), "in")

		if onMessage != nil {
			onMessage(msg)
		}
	}
}

func (c *Client) endpoint(driverID uuid.UUID) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("unsupported push url scheme: " + u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/drivers/" + driverID.String()
	return u.String(), nil
}

// Close tears the connection down and waits for the read goroutine.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logout"),
			time.Now().Add(time.Second))
		err = s.conn.Close()
		s.wg.Wait()
	})
	return err
}

func notify(fn func(types.ConnStatus), s types.ConnStatus) {
	if fn != nil {
		fn(s)
	}
}
