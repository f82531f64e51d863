// Package driversession reconciles one driver's view of open and assigned
// rides against the ride store, the push channel and operator actions.
package driversession

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

var ErrAlreadyRunning = errors.New("driver session already running")

type Config struct {
	PollInterval     time.Duration
	LocationInterval time.Duration
	GeoTimeout       time.Duration
	NoticeLimit      int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.LocationInterval <= 0 {
		c.LocationInterval = 10 * time.Second
	}
	if c.GeoTimeout <= 0 {
		c.GeoTimeout = 5 * time.Second
	}
	if c.NoticeLimit <= 0 {
		c.NoticeLimit = 20
	}
	return c
}

// Deps are the collaborators of a Controller. Store and Geo are required.
type Deps struct {
	Store    Store
	Geo      Geolocator
	Push     PushConnector
	Sink     LocationSink
	Session  Session
	Notifier Notifier
}

// Snapshot is a consistent copy of the controller's observable state.
type Snapshot struct {
	Profile                 *models.DriverProfile `json:"profile,omitempty"`
	OpenRequests            []models.RideRequest  `json:"open_requests"`
	CurrentRide             *models.RideRequest   `json:"current_ride"`
	LocationReportingActive bool                  `json:"location_reporting_active"`
	LastError               string                `json:"last_error,omitempty"`
	Notices                 []Notice              `json:"notices"`
}

// Controller is a single-writer actor. Run owns every field below the
// mailbox; other goroutines only talk to it through the mailbox.
type Controller struct {
	driverID uuid.UUID
	deps     Deps
	cfg      Config
	l        logger.Logger
	now      func() time.Time

	mailbox  chan func(context.Context)
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
	running  atomic.Bool
	snap     atomic.Pointer[Snapshot]

	profile    *models.DriverProfile
	open       []models.RideRequest
	current    *models.RideRequest
	lastErr    string
	notices    noticeLog
	rep        *reporter
	deniedRide uuid.UUID
	refreshDue bool
	push       io.Closer
}

func New(driverID uuid.UUID, deps Deps, cfg Config, l logger.Logger) *Controller {
	cfg = cfg.withDefaults()

	c := &Controller{
		driverID: driverID,
		deps:     deps,
		cfg:      cfg,
		l:        l,
		now:      time.Now,
		mailbox:  make(chan func(context.Context)),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		notices:  noticeLog{max: cfg.NoticeLimit},
	}
	c.publish()
	return c
}

func (c *Controller) DriverID() uuid.UUID {
	return c.driverID
}

// Done is closed once Run has returned and every timer and goroutine it
// started has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run refreshes once, then serves the mailbox and the poll ticker until ctx
// is cancelled or Logout is called.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	ctx = wrap.WithDriverID(ctx, c.driverID.String())
	defer c.teardown(ctx)

	c.l.Info(ctx, "driver session started", "poll_interval", c.cfg.PollInterval.String())

	c.connectPush(ctx)
	_ = c.refresh(ctx)
	c.publish()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.quit:
			return nil
		case <-ticker.C:
			_ = c.refresh(ctx)
		case cmd := <-c.mailbox:
			cmd(ctx)
		}

		if c.refreshDue && !c.stopped() {
			c.refreshDue = false
			_ = c.refresh(ctx)
		}
		c.publish()
	}
}

// Snapshot never blocks on the actor.
func (c *Controller) Snapshot() Snapshot {
	return *c.snap.Load()
}

// Refresh reconciles against the store immediately.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.do(ctx, func(ctx context.Context) error {
		c.notify(ctx, NoticeInfo, msgRefreshing)
		return c.refresh(ctx)
	})
}

// Accept claims rideID for this driver.
func (c *Controller) Accept(ctx context.Context, rideID uuid.UUID) (*models.RideRequest, error) {
	var ride *models.RideRequest
	err := c.do(ctx, func(ctx context.Context) error {
		r, err := c.accept(ctx, rideID)
		ride = r
		return err
	})
	return ride, err
}

// AdvanceStatus moves the current ride to target, which must be its immediate successor.
func (c *Controller) AdvanceStatus(ctx context.Context, target types.RideStatus) (*models.RideRequest, error) {
	var ride *models.RideRequest
	err := c.do(ctx, func(ctx context.Context) error {
		r, err := c.advance(ctx, target)
		ride = r
		return err
	})
	return ride, err
}

// HandlePush feeds a push message into the mailbox. It returns once the
// message is queued or the session stops.
func (c *Controller) HandlePush(ctx context.Context, msg models.PushMessage) {
	c.post(ctx, func(ctx context.Context) {
		c.handlePush(ctx, msg)
	})
}

// Logout clears the session credentials and stops the controller. It
// returns after teardown has finished.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.do(ctx, func(ctx context.Context) error {
		ctx = wrap.WithAction(ctx, types.ActionSessionTeardown)
		if c.deps.Session != nil {
			if err := c.deps.Session.Delete(ctx, models.SessionKeyToken, models.SessionKeyRole); err != nil {
				c.l.Error(wrap.ErrorCtx(ctx, err), "failed to clear session credentials", err)
			}
		}
		c.stop()
		return nil
	})
	if err != nil && !errors.Is(err, types.ErrSessionClosed) {
		return err
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs fn on the actor and waits for its result.
func (c *Controller) do(ctx context.Context, fn func(context.Context) error) error {
	reply := make(chan error, 1)
	cmd := func(loopCtx context.Context) {
		err := fn(loopCtx)
		c.publish()
		reply <- err
	}

	select {
	case c.mailbox <- cmd:
	case <-c.quit:
		return types.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-c.done:
		select {
		case err := <-reply:
			return err
		default:
			return types.ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting for it to run.
func (c *Controller) post(ctx context.Context, fn func(context.Context)) bool {
	select {
	case c.mailbox <- fn:
		return true
	case <-c.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *Controller) stopped() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

func (c *Controller) connectPush(ctx context.Context) {
	if c.deps.Push == nil {
		return
	}

	onMessage := func(msg models.PushMessage) {
		c.HandlePush(ctx, msg)
	}
	onStatus := func(s types.ConnStatus) {
		c.l.Info(ctx, "push channel status", "status", string(s))
		if s != types.ConnConnected {
			c.l.Warn(ctx, "push channel down, relying on polling")
		}
	}

	sub, err := c.deps.Push(ctx, c.driverID, onMessage, onStatus)
	if err != nil {
		c.l.Error(wrap.ErrorCtx(ctx, err), "push channel unavailable, relying on polling", err)
		return
	}
	c.push = sub
}

func (c *Controller) teardown(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionSessionTeardown)

	c.stop()
	c.stopReporter(ctx)

	if c.push != nil {
		if err := c.push.Close(); err != nil {
			c.l.Warn(ctx, "failed to close push channel", "error", err.Error())
		}
		c.push = nil
	}

	c.publish()
	c.l.Info(ctx, "driver session stopped")
}

func (c *Controller) notify(ctx context.Context, level NoticeLevel, msg string) {
	n := Notice{Level: level, Message: msg, At: c.now()}
	c.notices.add(n)
	if c.deps.Notifier != nil {
		c.deps.Notifier.Notify(ctx, n)
	}
}

func (c *Controller) publish() {
	s := &Snapshot{
		Profile:                 cloneProfile(c.profile),
		OpenRequests:            make([]models.RideRequest, 0, len(c.open)),
		CurrentRide:             c.current.Clone(),
		LocationReportingActive: c.rep != nil,
		LastError:               c.lastErr,
		Notices:                 c.notices.list(),
	}
	for i := range c.open {
		s.OpenRequests = append(s.OpenRequests, *c.open[i].Clone())
	}
	c.snap.Store(s)
	metrics.OpenRequestsGauge.Set(float64(len(s.OpenRequests)))
}

func cloneProfile(p *models.DriverProfile) *models.DriverProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// LogNotifier writes notices to the log.
type LogNotifier struct {
	l logger.Logger
}

func NewLogNotifier(l logger.Logger) *LogNotifier {
	return &LogNotifier{l: l}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	if notice.Level == NoticeError {
		n.l.Warn(ctx, notice.Message, "notice", true)
		return
	}
	n.l.Info(ctx, notice.Message, "notice", true)
}
