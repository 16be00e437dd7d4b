package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rickgao/vio-data/internal/model"
	"github.com/shopspring/decimal"
)

const widgetSnapshot = `{"_id":1,"data":{"scInfo":{"capturedTime":1000,"datetimeSaved":{"$date":"1970-01-01T00:16:40.000Z"}},"marketInfo":{"Widget":{"summary":{"buy":{"Volume":5,"Best":10},"sell":{}},"listings":{"buy":[{"userID":7,"amount":2,"price":10}],"sell":[]}}}}}`

const twoItemSnapshot = `{"_id":2,"data":{"scInfo":{"capturedTime":50},"marketInfo":{
	"Zeta":{"summary":{},"listings":{"buy":[{"userID":3,"amount":1,"price":1},{"userID":1,"amount":1,"price":1}],"sell":[{"userID":2,"amount":1,"price":2}]}},
	"Alpha":{"summary":{"sell":{"Volume":4,"Best":"2.5"}},"listings":{"buy":[{"userID":1,"amount":1,"price":1}],"sell":[{"userID":4,"amount":3,"price":2.5}]}}
}}}`

func goldSnapshot(unix int64) string {
	return fmt.Sprintf(`{"_id":%d,"data":{"scInfo":{"capturedTime":%d},"marketInfo":{"Gold Bar":{"summary":{"buy":{"Volume":1,"Best":3}},"listings":{"buy":[],"sell":[]}}}}}`, unix, unix)
}

func decodeSnapshot(t *testing.T, raw string) *SnapshotBody {
	t.Helper()
	var body SnapshotBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &body
}

func TestToMarket(t *testing.T) {
	t.Run("widget scenario", func(t *testing.T) {
		m, err := decodeSnapshot(t, widgetSnapshot).ToMarket(nil)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		w, ok := m.Item("Widget")
		if !ok {
			t.Fatal("Widget missing")
		}
		if !w.Summary.BuyVolume.Equal(decimal.NewFromInt(5)) {
			t.Errorf("BuyVolume = %s, want 5", w.Summary.BuyVolume)
		}
		if !w.Summary.BuyPrice.Equal(decimal.NewFromInt(10)) {
			t.Errorf("BuyPrice = %s, want 10", w.Summary.BuyPrice)
		}
		if !w.Summary.SellVolume.IsZero() || !w.Summary.SellPrice.IsZero() {
			t.Errorf("sell summary = %s/%s, want zero", w.Summary.SellVolume, w.Summary.SellPrice)
		}
		if len(w.Listings.Buy) != 1 || w.Listings.Buy[0].VendorID != 7 {
			t.Fatalf("buy listings = %+v", w.Listings.Buy)
		}
		if w.Listings.Buy[0].User != nil {
			t.Error("User should be nil without a user batch")
		}
		if m.ScanInfo.Unix != 1000 || !m.ScanInfo.Agrees() {
			t.Errorf("ScanInfo = %+v", m.ScanInfo)
		}
	})

	t.Run("keys and shared scan info", func(t *testing.T) {
		m, err := decodeSnapshot(t, twoItemSnapshot).ToMarket(nil)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		names := m.ItemNames()
		if len(names) != 2 || names[0] != "Zeta" || names[1] != "Alpha" {
			t.Fatalf("ItemNames() = %v, want [Zeta Alpha]", names)
		}
		for _, name := range names {
			item, _ := m.Item(name)
			if item.ScanInfo != m.ScanInfo {
				t.Errorf("%s: ScanInfo not shared", name)
			}
		}
		alpha, _ := m.Item("Alpha")
		if !alpha.Summary.SellPrice.Equal(decimal.RequireFromString("2.5")) {
			t.Errorf("SellPrice = %s, want 2.5", alpha.Summary.SellPrice)
		}
		if !m.ScanInfo.SavedAt.IsZero() {
			t.Error("SavedAt should be zero when datetimeSaved is absent")
		}
	})

	t.Run("attaches users", func(t *testing.T) {
		users := []model.RobloxUser{{ID: 9, Name: "nine"}, {ID: 7, Name: "seven"}}
		m, err := decodeSnapshot(t, widgetSnapshot).ToMarket(users)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		w, _ := m.Item("Widget")
		if w.Listings.Buy[0].User != &users[1] {
			t.Errorf("User = %v, want pointer to users[1]", w.Listings.Buy[0].User)
		}
	})

	t.Run("fractional summary volume", func(t *testing.T) {
		raw := `{"_id":4,"data":{"scInfo":{"capturedTime":1},"marketInfo":{
			"Dust":{"summary":{"buy":{"Volume":5.5,"Best":10.25},"sell":{"Volume":0.75}},"listings":{}}}}}`
		m, err := decodeSnapshot(t, raw).ToMarket(nil)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		d, _ := m.Item("Dust")
		if !d.Summary.BuyVolume.Equal(decimal.RequireFromString("5.5")) {
			t.Errorf("BuyVolume = %s, want 5.5", d.Summary.BuyVolume)
		}
		if !d.Summary.SellVolume.Equal(decimal.RequireFromString("0.75")) {
			t.Errorf("SellVolume = %s, want 0.75", d.Summary.SellVolume)
		}
	})

	t.Run("duplicate item key keeps last value", func(t *testing.T) {
		raw := `{"_id":3,"data":{"scInfo":{"capturedTime":1},"marketInfo":{
			"A":{"summary":{"buy":{"Volume":1}},"listings":{}},
			"B":{"summary":{},"listings":{}},
			"A":{"summary":{"buy":{"Volume":2}},"listings":{}}}}}`
		m, err := decodeSnapshot(t, raw).ToMarket(nil)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		if m.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", m.Len())
		}
		a, _ := m.Item("A")
		if !a.Summary.BuyVolume.Equal(decimal.NewFromInt(2)) {
			t.Errorf("BuyVolume = %s, want 2", a.Summary.BuyVolume)
		}
		if m.ItemNames()[0] != "A" {
			t.Errorf("ItemNames() = %v", m.ItemNames())
		}
	})
}

func TestToMarketMalformed(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing id", `{"data":{"scInfo":{"capturedTime":1},"marketInfo":{}}}`, "_id"},
		{"missing data", `{"_id":1}`, "data"},
		{"missing scInfo", `{"_id":1,"data":{"marketInfo":{}}}`, "data.scInfo"},
		{"missing capturedTime", `{"_id":1,"data":{"scInfo":{},"marketInfo":{}}}`, "data.scInfo.capturedTime"},
		{"bad date", `{"_id":1,"data":{"scInfo":{"capturedTime":1,"datetimeSaved":{"$date":"yesterday"}},"marketInfo":{}}}`, "data.scInfo.datetimeSaved"},
		{"missing marketInfo", `{"_id":1,"data":{"scInfo":{"capturedTime":1}}}`, "data.marketInfo"},
		{"missing summary", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"listings":{}}}}}`, "marketInfo.X.summary"},
		{"missing listings", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{}}}}}`, "marketInfo.X.listings"},
		{"missing userID", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{},"listings":{"buy":[{"amount":1,"price":1}]}}}}}`, "marketInfo.X.listings.buy[0].userID"},
		{"missing amount", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{},"listings":{"sell":[{"userID":1,"price":1}]}}}}}`, "marketInfo.X.listings.sell[0].amount"},
		{"missing price", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{},"listings":{"sell":[{"userID":1,"amount":1}]}}}}}`, "marketInfo.X.listings.sell[0].price"},
		{"negative amount", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{},"listings":{"buy":[{"userID":1,"amount":-1,"price":1}]}}}}}`, "marketInfo.X.listings.buy[0].amount"},
		{"negative price", `{"_id":1,"data":{"scInfo":{"capturedTime":1},"marketInfo":{"X":{"summary":{},"listings":{"buy":[{"userID":1,"amount":1,"price":-0.5}]}}}}}`, "marketInfo.X.listings.buy[0].price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := decodeSnapshot(t, tt.raw).ToMarket(nil)
			if m != nil {
				t.Error("expected nil market on error")
			}
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("error = %v, want ErrMalformedResponse", err)
			}
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("error = %T, want *MalformedError", err)
			}
			if me.Field != tt.field {
				t.Errorf("Field = %q, want %q", me.Field, tt.field)
			}
		})
	}

	t.Run("nil body", func(t *testing.T) {
		var b *SnapshotBody
		if _, err := b.ToMarket(nil); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("error = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestVendorIDs(t *testing.T) {
	ids := decodeSnapshot(t, twoItemSnapshot).VendorIDs()
	want := []int64{3, 1, 2, 4}
	if len(ids) != len(want) {
		t.Fatalf("VendorIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("VendorIDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	t.Run("every listing vendor is present", func(t *testing.T) {
		body := decodeSnapshot(t, twoItemSnapshot)
		set := make(map[int64]bool)
		for _, id := range body.VendorIDs() {
			if set[id] {
				t.Errorf("duplicate id %d", id)
			}
			set[id] = true
		}
		m, err := body.ToMarket(nil)
		if err != nil {
			t.Fatalf("ToMarket() error = %v", err)
		}
		for _, name := range m.ItemNames() {
			item, _ := m.Item(name)
			for _, l := range append(item.Listings.Buy, item.Listings.Sell...) {
				if !set[l.VendorID] {
					t.Errorf("vendor %d missing from VendorIDs()", l.VendorID)
				}
			}
		}
	})

	t.Run("empty body", func(t *testing.T) {
		var b *SnapshotBody
		if ids := b.VendorIDs(); len(ids) != 0 {
			t.Errorf("VendorIDs() = %v, want empty", ids)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2022-07-01T12:00:00Z", want},
		{"2022-07-01T12:00:00.000Z", want},
		{"2022-07-01T14:00:00+02:00", want},
		{"2022-07-01T12:00:00", want},
		{"2022-07-01 12:00:00", want},
		{"2022-07-01T12:00:00.250000", want.Add(250 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp() error = %v", err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseTimestamp("not a date"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestToItemHistoryMissingItem(t *testing.T) {
	records := []SnapshotBody{*decodeSnapshot(t, widgetSnapshot)}
	_, err := ToItemHistory("Gold Bar", records)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}
