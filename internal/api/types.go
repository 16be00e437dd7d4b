package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SnapshotBody is the body of GET /market and GET /market/{id}, and the
// DataType of a streamed Update.
//
// Pointer fields distinguish "absent" from "zero" so the builder can reject
// incomplete snapshots.
type SnapshotBody struct {
	ID   *int64        `json:"_id"`
	Data *SnapshotData `json:"data"`
}

// SnapshotData holds the scan info and per-item payloads.
type SnapshotData struct {
	ScanInfo   *ScanInfoBody `json:"scInfo"`
	MarketInfo *ItemSet      `json:"marketInfo"`
}

// ScanInfoBody is the scInfo object.
type ScanInfoBody struct {
	CapturedTime  *int64    `json:"capturedTime"`
	DatetimeSaved *DateBody `json:"datetimeSaved"`
}

// DateBody is an extended-JSON date: {"$date": "2022-07-01T12:00:00.000Z"}.
type DateBody struct {
	Date string `json:"$date"`
}

// ItemBody is one entry of marketInfo.
type ItemBody struct {
	Summary  *SummaryBody  `json:"summary"`
	Listings *ListingsBody `json:"listings"`
}

// SummaryBody holds both sides of an item summary.
type SummaryBody struct {
	Buy  *SideSummaryBody `json:"buy"`
	Sell *SideSummaryBody `json:"sell"`
}

// SideSummaryBody is one side of a summary. Missing keys decode as zero.
type SideSummaryBody struct {
	Volume decimal.Decimal `json:"Volume"`
	Best   decimal.Decimal `json:"Best"`
}

// ListingsBody holds the buy and sell order lists.
type ListingsBody struct {
	Buy  []ListingBody `json:"buy"`
	Sell []ListingBody `json:"sell"`
}

// ListingBody is one order.
type ListingBody struct {
	UserID *int64           `json:"userID"`
	Amount *int64           `json:"amount"`
	Price  *decimal.Decimal `json:"price"`
}

// UserBody is one record of POST /roblox.
type UserBody struct {
	ID          int64  `json:"_id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Profile     string `json:"roblox_profile"`
	TinyProfile string `json:"roblox_tiny_profile"`
}

// ItemEntry is a named marketInfo entry.
type ItemEntry struct {
	Name string
	Body ItemBody
}

// ItemSet is the marketInfo object decoded in document order.
// A repeated key keeps its first position and its last value.
type ItemSet []ItemEntry

// UnmarshalJSON decodes a JSON object while preserving key order.
func (s *ItemSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("marketInfo: expected object")
	}

	var items ItemSet
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var body ItemBody
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("marketInfo %q: %w", name, err)
		}

		if i, dup := index[name]; dup {
			items[i].Body = body
			continue
		}
		index[name] = len(items)
		items = append(items, ItemEntry{Name: name, Body: body})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = items
	return nil
}

// Lookup returns the body of the named item.
func (s ItemSet) Lookup(name string) (ItemBody, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Body, true
		}
	}
	return ItemBody{}, false
}
