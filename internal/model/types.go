package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanInfo records when a snapshot was captured.
type ScanInfo struct {
	Unix       int64     // capturedTime, seconds since epoch
	CapturedAt time.Time // derived from Unix (UTC)
	SavedAt    time.Time // datetimeSaved.$date (UTC), zero if not sent
}

// NewScanInfo builds a ScanInfo from the capture timestamp and the optional
// saved datetime.
func NewScanInfo(unix int64, savedAt time.Time) *ScanInfo {
	s := &ScanInfo{
		Unix:       unix,
		CapturedAt: time.Unix(unix, 0).UTC(),
	}
	if !savedAt.IsZero() {
		s.SavedAt = savedAt.UTC()
	}
	return s
}

// Agrees reports whether CapturedAt and SavedAt name the same second.
// It is true when SavedAt is absent.
func (s *ScanInfo) Agrees() bool {
	if s.SavedAt.IsZero() {
		return true
	}
	return s.SavedAt.Truncate(time.Second).Equal(s.CapturedAt)
}

// RobloxUser is the identity behind a vendor id.
type RobloxUser struct {
	ID             int64
	Name           string
	DisplayName    string
	ProfileURL     string
	TinyProfileURL string
}

// Listing is one resting order in an item's order book.
type Listing struct {
	VendorID  int64
	Volume    int64
	UnitPrice decimal.Decimal
	User      *RobloxUser // nil unless resolved
}

// NewListing builds a Listing and attaches the first user in users whose ID
// matches vendorID. The pointer refers into users; the batch is not copied.
func NewListing(vendorID, volume int64, unitPrice decimal.Decimal, users []RobloxUser) Listing {
	return Listing{
		VendorID:  vendorID,
		Volume:    volume,
		UnitPrice: unitPrice,
		User:      findUser(users, vendorID),
	}
}

func findUser(users []RobloxUser, id int64) *RobloxUser {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// ItemSummary holds best price and volume on each side of the book.
type ItemSummary struct {
	BuyVolume  decimal.Decimal
	BuyPrice   decimal.Decimal
	SellVolume decimal.Decimal
	SellPrice  decimal.Decimal
}

// ItemListings is the full order book of one item at one scan.
type ItemListings struct {
	Buy  []Listing
	Sell []Listing
}

// ItemInstance is one item at one point in time.
type ItemInstance struct {
	Name     string
	ScanInfo *ScanInfo // shared with every item of the same snapshot
	Summary  ItemSummary
	Listings ItemListings
}

// MarketInstance is a full market snapshot.
type MarketInstance struct {
	ID       int64
	ScanInfo *ScanInfo

	items map[string]*ItemInstance
	order []string
}

// NewMarketInstance assembles a snapshot. Items are kept in the given order;
// every item must already reference scan.
func NewMarketInstance(id int64, scan *ScanInfo, items []*ItemInstance) *MarketInstance {
	m := &MarketInstance{
		ID:       id,
		ScanInfo: scan,
		items:    make(map[string]*ItemInstance, len(items)),
		order:    make([]string, 0, len(items)),
	}
	for _, it := range items {
		if _, dup := m.items[it.Name]; !dup {
			m.order = append(m.order, it.Name)
		}
		m.items[it.Name] = it
	}
	return m
}

// Item returns the named item, if present in this snapshot.
func (m *MarketInstance) Item(name string) (*ItemInstance, bool) {
	it, ok := m.items[name]
	return it, ok
}

// ItemNames returns item names in upstream order.
func (m *MarketInstance) ItemNames() []string {
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// Len returns the number of items in the snapshot.
func (m *MarketInstance) Len() int {
	return len(m.items)
}
