package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/weather"
)

const waitTimeout = 2 * time.Second

// sampleOneCall has a -17 "feels like" now, with a thunderstorm and snow.
func sampleOneCall() weather.OneCall {
	oc := weather.OneCall{
		Current: weather.Current{
			FeelsLike: -17.2,
			Weather:   []weather.Condition{{ID: 211}, {ID: 601}},
		},
		Hourly: make([]weather.Hour, 7),
		Daily:  make([]weather.Day, 2),
	}
	oc.Hourly[2].FeelsLike = 3.4
	oc.Hourly[4].FeelsLike = 5.5
	oc.Hourly[4].Weather = []weather.Condition{{ID: 501}}
	oc.Hourly[6].FeelsLike = 8
	oc.Daily[1].FeelsLike.Day = 12.6
	oc.Daily[1].Weather = []weather.Condition{{ID: 800}}
	return oc
}

// scriptedSource fails with errs in order and succeeds afterwards.
type scriptedSource struct {
	clock clockwork.Clock

	mu    sync.Mutex
	errs  []error
	calls []time.Time
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) FetchForecast(ctx context.Context) (weather.OneCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, s.clock.Now())
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return weather.OneCall{}, err
	}
	return sampleOneCall(), nil
}

func (s *scriptedSource) callTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.calls...)
}

// recordingTarget counts opens and records every completed render. Open
// fails while failOpens is positive.
type recordingTarget struct {
	mu        sync.Mutex
	failOpens int
	failWrite bool
	opens     int
	closes    int

	rendered chan display.Rows
}

func newRecordingTarget() *recordingTarget {
	return &recordingTarget{rendered: make(chan display.Rows, 16)}
}

var errDevice = errors.New("device unavailable")

func (t *recordingTarget) Name() string { return "recording" }

func (t *recordingTarget) Open() (display.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opens++
	if t.failOpens > 0 {
		t.failOpens--
		return nil, errDevice
	}
	return &recordingSession{target: t}, nil
}

func (t *recordingTarget) counts() (opens, closes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opens, t.closes
}

type recordingSession struct {
	target *recordingTarget
	rows   display.Rows
	failed bool
}

func (s *recordingSession) Clear() error {
	s.rows = display.Rows{}
	return nil
}

func (s *recordingSession) WriteRow(i int, text display.Line) error {
	s.target.mu.Lock()
	fail := s.target.failWrite
	s.target.mu.Unlock()
	if fail {
		s.failed = true
		return errDevice
	}
	s.rows[i] = text
	return nil
}

func (s *recordingSession) Close() error {
	s.target.mu.Lock()
	s.target.closes++
	s.target.mu.Unlock()
	if !s.failed {
		s.target.rendered <- s.rows
	}
	return nil
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		var zero T
		t.Fatal("timed out waiting for message")
		return zero
	}
}

func startWorker(t *testing.T, run func(context.Context) error) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()
	stop := func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("worker returned %v", err)
			}
		case <-time.After(waitTimeout):
			t.Error("worker did not stop")
		}
	}
	t.Cleanup(stop)
	return cancel
}
