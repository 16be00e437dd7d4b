package api

import (
	"context"
	"fmt"

	"github.com/rickgao/vio-data/internal/model"
)

// VendorIDs returns every listing's userID, deduplicated, in first-seen order.
// Items are visited in document order and buy listings before sell listings.
// Listings without a userID are skipped.
func (b *SnapshotBody) VendorIDs() []int64 {
	if b == nil || b.Data == nil || b.Data.MarketInfo == nil {
		return nil
	}

	seen := make(map[int64]struct{})
	var ids []int64

	add := func(listings []ListingBody) {
		for _, l := range listings {
			if l.UserID == nil {
				continue
			}
			if _, ok := seen[*l.UserID]; ok {
				continue
			}
			seen[*l.UserID] = struct{}{}
			ids = append(ids, *l.UserID)
		}
	}

	for _, entry := range *b.Data.MarketInfo {
		if entry.Body.Listings == nil {
			continue
		}
		add(entry.Body.Listings.Buy)
		add(entry.Body.Listings.Sell)
	}

	return ids
}

// ResolveUsers resolves vendor ids to Roblox users with one batched request.
// An empty id list returns nil without calling the API.
func (c *Client) ResolveUsers(ctx context.Context, ids []int64) ([]model.RobloxUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp []UserBody
	if err := c.post(ctx, "/roblox", ids, &resp); err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	users := make([]model.RobloxUser, len(resp))
	for i, u := range resp {
		users[i] = u.ToModel()
	}

	c.logger.Debug("resolved users", "requested", len(ids), "returned", len(users))
	return users, nil
}

// ToModel converts a wire user record.
func (u UserBody) ToModel() model.RobloxUser {
	return model.RobloxUser{
		ID:             u.ID,
		Name:           u.Name,
		DisplayName:    u.DisplayName,
		ProfileURL:     u.Profile,
		TinyProfileURL: u.TinyProfile,
	}
}
