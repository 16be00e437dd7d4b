package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/vio-data/internal/config"
	"github.com/rickgao/vio-data/internal/connection"
	"github.com/rickgao/vio-data/internal/model"
)

type fakeHealth struct {
	stats  connection.Stats
	latest *model.MarketInstance
}

func (f *fakeHealth) State() connection.State { return f.stats.State }
func (f *fakeHealth) Stats() connection.Stats { return f.stats }
func (f *fakeHealth) Latest() *model.MarketInstance { return f.latest }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		state      connection.State
		wantStatus string
		wantCode   int
	}{
		{"streaming", connection.StateStreaming, "healthy", http.StatusOK},
		{"reconnecting", connection.StateReconnecting, "degraded", http.StatusOK},
		{"stopped", connection.StateStopped, "unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeHealth{
				stats:  connection.Stats{State: tt.state, Updates: 3},
				latest: model.NewMarketInstance(9, model.NewScanInfo(1000, time.Time{}), nil),
			}
			h := createHealthHandler("/health", src, nil)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var body struct {
				Status     string                     `json:"status"`
				Components map[string]json.RawMessage `json:"components"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if !strings.Contains(string(body.Components["latest_market"]), `"id":9`) {
				t.Errorf("latest_market = %s", body.Components["latest_market"])
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closeLog, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
		if err != nil {
			t.Fatalf("newLogger: %v", err)
		}
		defer closeLog()

		logger.Info("hidden")
		logger.Warn("shown", "k", 1)

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("info record written at warn level")
		}
		if !strings.Contains(out, `"msg":"shown"`) {
			t.Errorf("output = %q, want json record", out)
		}
	})

	t.Run("rotated file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vio.log")
		var buf bytes.Buffer
		logger, closeLog, err := newLogger(config.LoggingConfig{Level: "info", Format: "text", File: path, MaxSizeMB: 1}, &buf)
		if err != nil {
			t.Fatalf("newLogger: %v", err)
		}
		logger.Info("to file")
		if err := closeLog(); err != nil {
			t.Errorf("close: %v", err)
		}
		if buf.Len() != 0 {
			t.Error("file logging should not write to stdout")
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, _, err := newLogger(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}
