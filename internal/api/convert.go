package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/vio-data/internal/model"
)

// ErrMalformedResponse is returned when a response body lacks a field the
// object graph needs, or carries an invalid value.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedError names the field that made a body unusable.
type MalformedError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("malformed response: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedResponse) true.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &MalformedError{Field: field, Reason: "missing"}
}

// ToMarket builds a MarketInstance from a snapshot body. Listings whose
// vendor id matches a user in users get that user attached.
//
// The conversion is all-or-nothing: on error no partial market is returned.
func (b *SnapshotBody) ToMarket(users []model.RobloxUser) (*model.MarketInstance, error) {
	if b == nil {
		return nil, missing("body")
	}
	if b.ID == nil {
		return nil, missing("_id")
	}
	if b.Data == nil {
		return nil, missing("data")
	}

	scan, err := b.Data.ScanInfo.toModel()
	if err != nil {
		return nil, err
	}

	if b.Data.MarketInfo == nil {
		return nil, missing("data.marketInfo")
	}

	items := make([]*model.ItemInstance, 0, len(*b.Data.MarketInfo))
	for _, entry := range *b.Data.MarketInfo {
		item, err := entry.Body.ToItemInstance(entry.Name, scan, users)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return model.NewMarketInstance(*b.ID, scan, items), nil
}

// ToItemInstance builds one item at one scan. scan is shared, not copied.
func (b ItemBody) ToItemInstance(name string, scan *model.ScanInfo, users []model.RobloxUser) (*model.ItemInstance, error) {
	field := "marketInfo." + name

	if b.Summary == nil {
		return nil, missing(field + ".summary")
	}
	if b.Listings == nil {
		return nil, missing(field + ".listings")
	}

	buy, err := toListings(field+".listings.buy", b.Listings.Buy, users)
	if err != nil {
		return nil, err
	}
	sell, err := toListings(field+".listings.sell", b.Listings.Sell, users)
	if err != nil {
		return nil, err
	}

	return &model.ItemInstance{
		Name:     name,
		ScanInfo: scan,
		Summary:  b.Summary.toModel(),
		Listings: model.ItemListings{Buy: buy, Sell: sell},
	}, nil
}

func (s *SummaryBody) toModel() model.ItemSummary {
	var out model.ItemSummary
	if s.Buy != nil {
		out.BuyVolume = s.Buy.Volume
		out.BuyPrice = s.Buy.Best
	}
	if s.Sell != nil {
		out.SellVolume = s.Sell.Volume
		out.SellPrice = s.Sell.Best
	}
	return out
}

func toListings(field string, raw []ListingBody, users []model.RobloxUser) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(raw))
	for i, l := range raw {
		f := fmt.Sprintf("%s[%d]", field, i)
		switch {
		case l.UserID == nil:
			return nil, missing(f + ".userID")
		case l.Amount == nil:
			return nil, missing(f + ".amount")
		case l.Price == nil:
			return nil, missing(f + ".price")
		case *l.Amount < 0:
			return nil, &MalformedError{Field: f + ".amount", Reason: "negative"}
		case l.Price.IsNegative():
			return nil, &MalformedError{Field: f + ".price", Reason: "negative"}
		}
		out = append(out, model.NewListing(*l.UserID, *l.Amount, *l.Price, users))
	}
	return out, nil
}

func (s *ScanInfoBody) toModel() (*model.ScanInfo, error) {
	if s == nil {
		return nil, missing("data.scInfo")
	}
	if s.CapturedTime == nil {
		return nil, missing("data.scInfo.capturedTime")
	}

	var saved time.Time
	if s.DatetimeSaved != nil && s.DatetimeSaved.Date != "" {
		t, err := ParseTimestamp(s.DatetimeSaved.Date)
		if err != nil {
			return nil, &MalformedError{Field: "data.scInfo.datetimeSaved", Reason: "bad date", Err: err}
		}
		saved = t
	}

	return model.NewScanInfo(*s.CapturedTime, saved), nil
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO 8601 datetime and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, firstErr)
}

// ToItemHistory builds one ItemInstance per history record. Each record has
// its own ScanInfo. Records that do not contain the item are malformed.
func ToItemHistory(name string, records []SnapshotBody) ([]*model.ItemInstance, error) {
	out := make([]*model.ItemInstance, 0, len(records))
	for i := range records {
		rec := &records[i]
		if rec.Data == nil {
			return nil, missing(fmt.Sprintf("[%d].data", i))
		}
		scan, err := rec.Data.ScanInfo.toModel()
		if err != nil {
			return nil, err
		}
		if rec.Data.MarketInfo == nil {
			return nil, missing(fmt.Sprintf("[%d].data.marketInfo", i))
		}
		body, ok := rec.Data.MarketInfo.Lookup(name)
		if !ok {
			return nil, missing(fmt.Sprintf("[%d].data.marketInfo.%s", i, name))
		}
		item, err := body.ToItemInstance(name, scan, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
