package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/logger"
	"github.com/i474232898/weather-clock/internal/metrics"
	"github.com/i474232898/weather-clock/internal/status"
	"github.com/i474232898/weather-clock/internal/weather"
)

type stubBoard struct {
	snap status.Snapshot
	err  error
}

func (s stubBoard) Snapshot(context.Context) (status.Snapshot, error) {
	return s.snap, s.err
}

func knownSnapshot() status.Snapshot {
	summary := weather.Unknown()
	summary.Slots[0].Temperature = 21
	summary.Updated = time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)
	return status.Snapshot{
		Summary: summary,
		Rows:    display.NewRows("Tue Jan 02 15:04:05", "now"),
	}
}

func get(t *testing.T, board SnapshotReader, target string) (*http.Response, string) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.NewCollector("weather_clock", reg)
	app := NewApp(board, reg, logger.Nop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		board  SnapshotReader
		target string
		want   int
	}{
		{"health", stubBoard{}, "/health", http.StatusOK},
		{"forecast", stubBoard{snap: knownSnapshot()}, "/api/v1/forecast", http.StatusOK},
		{"forecast placeholder", stubBoard{snap: status.Snapshot{Summary: weather.Unknown()}}, "/api/v1/forecast", http.StatusNotFound},
		{"board down", stubBoard{err: errors.New("gone")}, "/api/v1/forecast", http.StatusServiceUnavailable},
		{"display json", stubBoard{snap: knownSnapshot()}, "/api/v1/display", http.StatusOK},
		{"display bad format", stubBoard{snap: knownSnapshot()}, "/api/v1/display?format=xml", http.StatusBadRequest},
		{"status", stubBoard{snap: knownSnapshot()}, "/api/v1/status", http.StatusOK},
		{"metrics", stubBoard{}, "/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, tt.board, tt.target)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d (%s)", tt.want, resp.StatusCode, body)
			}
		})
	}
}

func TestForecastBody(t *testing.T) {
	_, body := get(t, stubBoard{snap: knownSnapshot()}, "/api/v1/forecast")

	var summary weather.Summary
	if err := json.Unmarshal([]byte(body), &summary); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	if summary.Slots[0].Temperature != 21 || summary.Slots[0].Label != weather.LabelNow {
		t.Errorf("slot 0 = %+v", summary.Slots[0])
	}
}

func TestDisplayText(t *testing.T) {
	_, body := get(t, stubBoard{snap: knownSnapshot()}, "/api/v1/display?format=text")
	if !strings.HasPrefix(body, "Tue Jan 02 15:04:05\nnow\n") {
		t.Errorf("body = %q", body)
	}
}

func TestErrorBodyShape(t *testing.T) {
	_, body := get(t, stubBoard{snap: status.Snapshot{Summary: weather.Unknown()}}, "/api/v1/forecast")
	var payload struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.Error || payload.Message == "" {
		t.Errorf("error body = %q", body)
	}
}

func TestMetricsExposed(t *testing.T) {
	_, body := get(t, stubBoard{}, "/metrics")
	if !strings.Contains(body, "weather_clock_compose_ticks_total") {
		t.Errorf("metrics body lacks collector output")
	}
}
