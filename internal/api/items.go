package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetItems fetches every item name.
func (c *Client) GetItems(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "/items", &names); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return names, nil
}

// GetItemHistory fetches every recorded scan restricted to one item.
func (c *Client) GetItemHistory(ctx context.Context, name string) ([]SnapshotBody, error) {
	var records []SnapshotBody
	path := "/item/" + url.PathEscape(name) + "/all"
	if err := c.get(ctx, path, &records); err != nil {
		return nil, fmt.Errorf("get item history %q: %w", name, err)
	}
	return records, nil
}
