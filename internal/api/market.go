package api

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// GetCurrentMarket fetches the body of the latest snapshot.
func (c *Client) GetCurrentMarket(ctx context.Context) (*SnapshotBody, error) {
	var body SnapshotBody
	if err := c.get(ctx, "/market", &body); err != nil {
		return nil, fmt.Errorf("get current market: %w", err)
	}
	return &body, nil
}

// GetMarketScan fetches the body of a historical snapshot by scan id.
func (c *Client) GetMarketScan(ctx context.Context, id int64) (*SnapshotBody, error) {
	var body SnapshotBody
	path := "/market/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("get market scan %d: %w", id, err)
	}
	return &body, nil
}

// GetScanHistory fetches the scan history index, keyed by scan time (UTC).
func (c *Client) GetScanHistory(ctx context.Context) (map[time.Time]int64, error) {
	var raw map[string]int64
	if err := c.get(ctx, "/market/history", &raw); err != nil {
		return nil, fmt.Errorf("get scan history: %w", err)
	}

	history := make(map[time.Time]int64, len(raw))
	for k, v := range raw {
		t, err := ParseTimestamp(k)
		if err != nil {
			return nil, &MalformedError{Field: "history key " + strconv.Quote(k), Reason: "bad date", Err: err}
		}
		history[t] = v
	}
	return history, nil
}
