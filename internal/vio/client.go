package vio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/vio-data/internal/api"
	"github.com/rickgao/vio-data/internal/market"
	"github.com/rickgao/vio-data/internal/model"
)

// MarketOption configures a snapshot fetch.
type MarketOption func(*marketOptions)

type marketOptions struct {
	queryUsers bool
}

// WithQueryUsers controls whether vendor ids are resolved to Roblox users
// before the snapshot is built. The default is true.
func WithQueryUsers(v bool) MarketOption {
	return func(o *marketOptions) {
		o.queryUsers = v
	}
}

func applyMarketOptions(opts []MarketOption) marketOptions {
	o := marketOptions{queryUsers: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Client is the blocking Vio client. Snapshots it fetches are recorded in
// its cache.
type Client struct {
	rest   *api.Client
	cache  *market.Cache
	logger *slog.Logger
}

// NewClient creates a Client. A nil cache gets a fresh unbounded one.
func NewClient(rest *api.Client, cache *market.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = market.NewCache(market.DefaultConfig(), logger)
	}
	return &Client{
		rest:   rest,
		cache:  cache,
		logger: logger,
	}
}

// CurrentMarket fetches the latest snapshot, caches it and makes it the
// latest market.
func (c *Client) CurrentMarket(ctx context.Context, opts ...MarketOption) (*model.MarketInstance, error) {
	body, err := c.rest.GetCurrentMarket(ctx)
	if err != nil {
		return nil, err
	}

	m, err := c.build(ctx, body, applyMarketOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("current market: %w", err)
	}

	c.cache.Record(m)
	return m, nil
}

// FetchSnapshot fetches the current market without resolving users.
func (c *Client) FetchSnapshot(ctx context.Context) (*model.MarketInstance, error) {
	return c.CurrentMarket(ctx, WithQueryUsers(false))
}

// MarketScan fetches a historical snapshot and caches it. The latest market
// is not changed.
func (c *Client) MarketScan(ctx context.Context, id int64, opts ...MarketOption) (*model.MarketInstance, error) {
	body, err := c.rest.GetMarketScan(ctx, id)
	if err != nil {
		return nil, err
	}

	m, err := c.build(ctx, body, applyMarketOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("market scan %d: %w", id, err)
	}

	c.cache.Add(m)
	return m, nil
}

func (c *Client) build(ctx context.Context, body *api.SnapshotBody, o marketOptions) (*model.MarketInstance, error) {
	var users []model.RobloxUser
	if o.queryUsers {
		var err error
		users, err = c.rest.ResolveUsers(ctx, body.VendorIDs())
		if err != nil {
			return nil, err
		}
	}

	m, err := body.ToMarket(users)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("built market",
		"id", m.ID,
		"items", m.Len(),
		"users", len(users),
	)
	return m, nil
}

// ScanHistory returns the scan index: scan time (UTC) to scan id.
func (c *Client) ScanHistory(ctx context.Context) (map[time.Time]int64, error) {
	return c.rest.GetScanHistory(ctx)
}

// AllItems returns every item name.
func (c *Client) AllItems(ctx context.Context) ([]string, error) {
	return c.rest.GetItems(ctx)
}

// ItemHistory returns one ItemInstance per recorded scan of the item.
func (c *Client) ItemHistory(ctx context.Context, name string) ([]*model.ItemInstance, error) {
	records, err := c.rest.GetItemHistory(ctx, name)
	if err != nil {
		return nil, err
	}

	items, err := api.ToItemHistory(name, records)
	if err != nil {
		return nil, fmt.Errorf("item history %q: %w", name, err)
	}
	return items, nil
}

// Users resolves vendor ids to Roblox users.
func (c *Client) Users(ctx context.Context, ids []int64) ([]model.RobloxUser, error) {
	return c.rest.ResolveUsers(ctx, ids)
}

// Latest returns the most recent current snapshot, or nil.
func (c *Client) Latest() *model.MarketInstance {
	return c.cache.Latest()
}

// Cache returns the snapshot cache.
func (c *Client) Cache() *market.Cache {
	return c.cache
}
