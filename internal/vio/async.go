package vio

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/vio-data/internal/connection"
	"github.com/rickgao/vio-data/internal/model"
)

// Result is the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// goResult runs fn in a goroutine. The channel yields one Result and is
// then closed.
func goResult[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// AsyncClient is the non-blocking Vio client. It shares its cache with the
// Listener, so streamed updates and fetched snapshots land in one place.
type AsyncClient struct {
	client   *Client
	listener *connection.Listener
	logger   *slog.Logger
}

// NewAsyncClient creates an AsyncClient around client and listener.
func NewAsyncClient(client *Client, listener *connection.Listener, logger *slog.Logger) *AsyncClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncClient{
		client:   client,
		listener: listener,
		logger:   logger,
	}
}

// Client returns the blocking client.
func (a *AsyncClient) Client() *Client {
	return a.client
}

// CurrentMarket fetches the latest snapshot.
func (a *AsyncClient) CurrentMarket(ctx context.Context, opts ...MarketOption) <-chan Result[*model.MarketInstance] {
	return goResult(ctx, func(ctx context.Context) (*model.MarketInstance, error) {
		return a.client.CurrentMarket(ctx, opts...)
	})
}

// MarketScan fetches a historical snapshot.
func (a *AsyncClient) MarketScan(ctx context.Context, id int64, opts ...MarketOption) <-chan Result[*model.MarketInstance] {
	return goResult(ctx, func(ctx context.Context) (*model.MarketInstance, error) {
		return a.client.MarketScan(ctx, id, opts...)
	})
}

// ScanHistory fetches the scan index.
func (a *AsyncClient) ScanHistory(ctx context.Context) <-chan Result[map[time.Time]int64] {
	return goResult(ctx, a.client.ScanHistory)
}

// AllItems fetches every item name.
func (a *AsyncClient) AllItems(ctx context.Context) <-chan Result[[]string] {
	return goResult(ctx, a.client.AllItems)
}

// ItemHistory fetches the history of one item.
func (a *AsyncClient) ItemHistory(ctx context.Context, name string) <-chan Result[[]*model.ItemInstance] {
	return goResult(ctx, func(ctx context.Context) ([]*model.ItemInstance, error) {
		return a.client.ItemHistory(ctx, name)
	})
}

// Users resolves vendor ids.
func (a *AsyncClient) Users(ctx context.Context, ids []int64) <-chan Result[[]model.RobloxUser] {
	return goResult(ctx, func(ctx context.Context) ([]model.RobloxUser, error) {
		return a.client.Users(ctx, ids)
	})
}

// Latest returns the most recent current snapshot, fetched or streamed.
func (a *AsyncClient) Latest() *model.MarketInstance {
	return a.client.Latest()
}

// Subscribe registers a subscriber for live updates.
func (a *AsyncClient) Subscribe(s connection.Subscriber) (connection.SubscriptionID, error) {
	return a.listener.Subscribe(s)
}

// SubscribeFunc registers a function for live updates. Functions cannot be
// compared, so registering the same fn twice yields two registrations; use
// Subscribe with a pointer subscriber when set semantics are needed.
func (a *AsyncClient) SubscribeFunc(fn func(context.Context, *model.MarketInstance) error) (connection.SubscriptionID, error) {
	if fn == nil {
		return "", connection.ErrInvalidSubscriber
	}
	return a.listener.Subscribe(connection.SubscriberFunc(fn))
}

// Unsubscribe removes a registration.
func (a *AsyncClient) Unsubscribe(id connection.SubscriptionID) bool {
	return a.listener.Unsubscribe(id)
}

// Listen runs the Listener until Stop or ctx is done. See Listener.Run.
func (a *AsyncClient) Listen(ctx context.Context) error {
	return a.listener.Run(ctx)
}

// Stop ends Listen.
func (a *AsyncClient) Stop() {
	a.listener.Stop()
}

// State returns the Listener state.
func (a *AsyncClient) State() connection.State {
	return a.listener.State()
}

// Stats returns Listener statistics.
func (a *AsyncClient) Stats() connection.Stats {
	return a.listener.Stats()
}

// HandleSnapshot dispatches a polled snapshot to the live-update
// subscribers, so a poller can feed the same registry as the stream.
// Snapshots the stream already delivered are skipped.
func (a *AsyncClient) HandleSnapshot(ctx context.Context, m *model.MarketInstance) error {
	if m != nil && !a.listener.Dispatch(ctx, m) {
		a.logger.Debug("polled snapshot already delivered", "id", m.ID)
	}
	return nil
}

// Run listens until SIGINT or SIGTERM is received or ctx is done.
func (a *AsyncClient) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("listening for market updates")
	err := a.Listen(ctx)
	a.logger.Info("listener exited", "state", a.State())
	return err
}
