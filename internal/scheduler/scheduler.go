package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-clock/internal/logger"
	"github.com/i474232898/weather-clock/internal/metrics"
	"github.com/i474232898/weather-clock/internal/status"
)

// DefaultInterval is how often the heartbeat runs.
const DefaultInterval = time.Minute

const snapshotTimeout = 5 * time.Second

// SnapshotReader is the read side of the status board.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (status.Snapshot, error)
}

// Heartbeat periodically checks how stale the displayed forecast is.
type Heartbeat struct {
	scheduler *gocron.Scheduler
	board     SnapshotReader
	metrics   *metrics.Collector
	log       *logger.Logger
	interval  time.Duration
	// staleAfter is the forecast age that triggers a warning.
	staleAfter time.Duration
	now        func() time.Time
}

// New creates a Heartbeat that warns once the forecast is older than
// staleAfter.
func New(board SnapshotReader, interval, staleAfter time.Duration, m *metrics.Collector, log *logger.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Heartbeat{
		scheduler:  s,
		board:      board,
		metrics:    m,
		log:        log.With("component", "heartbeat"),
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Start schedules the check and starts the underlying scheduler.
func (h *Heartbeat) Start() error {
	_, err := h.scheduler.Every(h.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := h.Check(ctx); err != nil {
			h.log.Debugw("heartbeat skipped", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule heartbeat: %w", err)
	}

	h.scheduler.StartAsync()
	return nil
}

// Check reads one snapshot, publishes the forecast age and warns when it is
// stale.
func (h *Heartbeat) Check(ctx context.Context) error {
	snap, err := h.board.Snapshot(ctx)
	if err != nil {
		return err
	}

	age := snap.Age(h.now())
	h.metrics.SetForecastAge(age)

	switch {
	case snap.Summary.IsUnknown():
		h.log.Infow("heartbeat", "forecast", "none", "consecutive_failures", snap.ConsecutiveFailures, "last_error", snap.LastError)
	case h.staleAfter > 0 && age > h.staleAfter:
		h.log.Warnw("forecast is stale", "age", age.Round(time.Second), "consecutive_failures", snap.ConsecutiveFailures, "last_error", snap.LastError)
	default:
		h.log.Debugw("heartbeat", "age", age.Round(time.Second))
	}
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (h *Heartbeat) Stop() {
	if h.scheduler != nil {
		h.scheduler.Stop()
	}
}
