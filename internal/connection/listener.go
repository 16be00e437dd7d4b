package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/vio-data/internal/api"
	"github.com/rickgao/vio-data/internal/auth"
	"github.com/rickgao/vio-data/internal/market"
	"github.com/rickgao/vio-data/internal/model"
)

// deliveredWindow is how many recent snapshot ids are remembered to keep
// delivery exactly-once.
const deliveredWindow = 1024

// Listener consumes the live update feed and dispatches each snapshot to the
// registered subscribers.
type Listener struct {
	cfg      ListenerConfig
	creds    *auth.Credentials
	cache    *market.Cache
	registry *Registry
	backoff  Backoff
	logger   *slog.Logger

	// Run ownership; cancel stops the active run.
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	// dispatchMu orders deliveries; delivered holds recently delivered ids.
	dispatchMu sync.Mutex
	delivered  *market.Cache

	state atomic.Int32

	connects         atomic.Int64
	reconnects       atomic.Int64
	updates          atomic.Int64
	ignored          atomic.Int64
	parseErrors      atomic.Int64
	duplicates       atomic.Int64
	subscriberErrors atomic.Int64
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithBackoff sets the reconnect policy.
func WithBackoff(b Backoff) ListenerOption {
	return func(l *Listener) {
		if b != nil {
			l.backoff = b
		}
	}
}

// NewListener creates an idle Listener. Updates are recorded in cache; a nil
// cache gets a fresh unbounded one.
func NewListener(cfg ListenerConfig, creds *auth.Credentials, cache *market.Cache, logger *slog.Logger, opts ...ListenerOption) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = market.NewCache(market.DefaultConfig(), logger)
	}

	l := &Listener{
		cfg:      cfg,
		creds:    creds,
		cache:    cache,
		registry:  NewRegistry(),
		backoff:   NewExponentialBackoff(time.Second, time.Minute),
		logger:    logger,
		delivered: market.NewCache(market.Config{Capacity: deliveredWindow}, logger),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state.Store(int32(StateIdle))
	return l
}

// Subscribe registers a subscriber.
func (l *Listener) Subscribe(s Subscriber) (SubscriptionID, error) {
	return l.registry.Subscribe(s)
}

// Unsubscribe removes a registration.
func (l *Listener) Unsubscribe(id SubscriptionID) bool {
	return l.registry.Unsubscribe(id)
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Stats returns current statistics.
func (l *Listener) Stats() Stats {
	return Stats{
		State:            l.State(),
		Subscribers:      l.registry.Len(),
		Connects:         l.connects.Load(),
		Reconnects:       l.reconnects.Load(),
		Updates:          l.updates.Load(),
		Ignored:          l.ignored.Load(),
		ParseErrors:      l.parseErrors.Load(),
		Duplicates:       l.duplicates.Load(),
		SubscriberErrors: l.subscriberErrors.Load(),
	}
}

// Run connects and streams until Stop is called or ctx is done, reconnecting
// after every drop. It returns nil on a clean stop and an error wrapping
// ErrAuthentication if the key is rejected. If another Run is active it
// returns nil immediately.
func (l *Listener) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		l.logger.Debug("listener already running")
		return nil
	}
	l.running = true
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		cancel()
		l.mu.Lock()
		l.running = false
		l.cancel = nil
		l.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			l.setState(StateStopped)
			return nil
		}

		l.setState(StateConnecting)

		connLogger := l.logger.With("session", uuid.NewString())
		client := NewClient(l.cfg.Client, l.creds, connLogger)

		err := client.Connect(ctx)
		if err == nil {
			l.connects.Add(1)
			l.backoff.Reset()
			l.setState(StateStreaming)
			connLogger.Info("stream connected", "url", l.cfg.Client.URL)

			err = l.stream(ctx, client)
		}
		client.Close()

		if ctx.Err() != nil {
			l.setState(StateStopped)
			l.logger.Info("listener stopped")
			return nil
		}

		if errors.Is(err, ErrAuthentication) {
			l.setState(StateStopped)
			l.logger.Error("stream authentication failed", "error", err)
			return fmt.Errorf("listen: %w", err)
		}

		l.setState(StateReconnecting)
		l.reconnects.Add(1)
		wait := l.backoff.Next()
		l.logger.Warn("stream disconnected, reconnecting",
			"error", err,
			"wait", wait,
		)

		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}
}

// Stop ends the active Run at its next wait point and closes the socket.
// An in-flight dispatch is allowed to finish. Stop is idempotent and does
// nothing when no Run is active.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
}

// stream reads frames until the connection fails or ctx is done.
func (l *Listener) stream(ctx context.Context, client Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-client.Errors():
			// Frames read before the failure are still delivered.
			for {
				select {
				case msg := <-client.Messages():
					l.handleFrame(ctx, msg)
				default:
					return err
				}
			}

		case msg := <-client.Messages():
			l.handleFrame(ctx, msg)
		}
	}
}

// handleFrame decodes one frame. Bad frames are logged and skipped.
func (l *Listener) handleFrame(ctx context.Context, msg TimestampedMessage) {
	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		l.parseErrors.Add(1)
		l.logger.Warn("invalid stream frame", "error", err, "len", len(msg.Data))
		return
	}

	if env.Rtype != UpdateType {
		l.ignored.Add(1)
		l.logger.Debug("ignoring stream frame", "rtype", env.Rtype)
		return
	}

	m, err := buildUpdate(env.DataType)
	if err != nil {
		l.parseErrors.Add(1)
		l.logger.Warn("invalid update payload", "error", err)
		return
	}

	if !m.ScanInfo.Agrees() {
		l.logger.Warn("scan times disagree",
			"id", m.ID,
			"captured_at", m.ScanInfo.CapturedAt,
			"saved_at", m.ScanInfo.SavedAt,
		)
	}

	l.cache.Record(m)
	l.updates.Add(1)

	l.logger.Debug("market update",
		"id", m.ID,
		"items", m.Len(),
		"latency", time.Since(msg.ReceivedAt),
	)

	l.Dispatch(ctx, m)
}

func buildUpdate(raw json.RawMessage) (*model.MarketInstance, error) {
	var body api.SnapshotBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &api.MalformedError{Field: "DataType", Reason: "invalid JSON", Err: err}
	}
	return body.ToMarket(nil)
}

// Dispatch hands m to every subscriber registered at call time and waits for
// all of them. Streamed and externally dispatched snapshots share one queue:
// each dispatch finishes before the next starts, and a snapshot id that was
// already delivered is skipped. Dispatch reports whether m was delivered.
// Subscribers must not call Dispatch themselves.
func (l *Listener) Dispatch(ctx context.Context, m *model.MarketInstance) bool {
	if m == nil {
		return false
	}

	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()

	// Only the id is needed; keep an item-less marker instead of the snapshot.
	if !l.delivered.Add(model.NewMarketInstance(m.ID, m.ScanInfo, nil)) {
		l.duplicates.Add(1)
		l.logger.Debug("snapshot already delivered", "id", m.ID)
		return false
	}
	l.dispatch(ctx, m)
	return true
}

func (l *Listener) dispatch(ctx context.Context, m *model.MarketInstance) {
	subs := l.registry.Snapshot()
	if len(subs) == 0 {
		return
	}

	// Subscribers finish even if Stop is called mid-dispatch.
	dctx := context.WithoutCancel(ctx)

	var g errgroup.Group
	if l.cfg.DispatchConcurrency > 0 {
		g.SetLimit(l.cfg.DispatchConcurrency)
	}
	for _, s := range subs {
		g.Go(func() error {
			l.invoke(dctx, s, m)
			return nil
		})
	}
	g.Wait()
}

func (l *Listener) invoke(ctx context.Context, s Subscriber, m *model.MarketInstance) {
	defer func() {
		if r := recover(); r != nil {
			l.subscriberErrors.Add(1)
			l.logger.Error("subscriber panic", "id", m.ID, "panic", r)
		}
	}()

	if err := s.OnUpdate(ctx, m); err != nil {
		l.subscriberErrors.Add(1)
		l.logger.Warn("subscriber error", "id", m.ID, "error", err)
	}
}
