package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/vio-data/internal/model"
)

// SnapshotSource fetches the current market snapshot.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*model.MarketInstance, error)
}

// SnapshotSourceFunc is a function adapter for SnapshotSource.
type SnapshotSourceFunc func(context.Context) (*model.MarketInstance, error)

func (f SnapshotSourceFunc) FetchSnapshot(ctx context.Context) (*model.MarketInstance, error) {
	return f(ctx)
}

// SnapshotHandler receives fetched snapshots.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, m *model.MarketInstance) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(context.Context, *model.MarketInstance) error

func (f SnapshotHandlerFunc) HandleSnapshot(ctx context.Context, m *model.MarketInstance) error {
	return f(ctx, m)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 1m)
	Timeout  time.Duration // Per-request timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Stats provides statistics about the poller.
type Stats struct {
	Polls     int64
	Handled   int64 // snapshots with a new id
	Unchanged int64 // snapshots with the last seen id
	Errors    int64
}

// Poller periodically fetches the current snapshot via REST API.
type Poller struct {
	cfg     Config
	source  SnapshotSource
	handler SnapshotHandler
	logger  *slog.Logger

	// lastID is only touched by the poll loop.
	lastID  int64
	hasLast bool

	polls     atomic.Int64
	handled   atomic.Int64
	unchanged atomic.Int64
	errors    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, source SnapshotSource, handler SnapshotHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("snapshot poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("snapshot poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current statistics.
func (p *Poller) Stats() Stats {
	return Stats{
		Polls:     p.polls.Load(),
		Handled:   p.handled.Load(),
		Unchanged: p.unchanged.Load(),
		Errors:    p.errors.Load(),
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches one snapshot and hands it on if its id is new. Errors are
// logged and counted; the loop keeps going.
func (p *Poller) poll() {
	start := time.Now()
	p.polls.Add(1)

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	m, err := p.source.FetchSnapshot(ctx)
	if err != nil {
		p.errors.Add(1)
		p.logger.Warn("failed to poll market", "err", err)
		return
	}

	if p.hasLast && m.ID == p.lastID {
		p.unchanged.Add(1)
		p.logger.Debug("snapshot unchanged", "id", m.ID)
		return
	}
	p.lastID, p.hasLast = m.ID, true

	if p.handler != nil {
		if err := p.handler.HandleSnapshot(p.ctx, m); err != nil {
			p.errors.Add(1)
			p.logger.Warn("snapshot handler failed", "id", m.ID, "err", err)
			return
		}
	}
	p.handled.Add(1)

	p.logger.Info("poll complete",
		"id", m.ID,
		"items", m.Len(),
		"duration", time.Since(start),
	)
}
