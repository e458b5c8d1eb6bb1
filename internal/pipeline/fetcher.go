package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-clock/internal/actor"
	"github.com/i474232898/weather-clock/internal/weather"
)

// Default fetch cadence.
const (
	DefaultRefresh = time.Hour
	DefaultRetry   = 10 * time.Second
)

// FetchOutcome reports the result of one fetch cycle.
type FetchOutcome struct {
	At  time.Time
	Err error
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Source    weather.Source
	Forecasts actor.Recipient[weather.Summary]
	// Outcomes, when set, receives one FetchOutcome per cycle.
	Outcomes actor.Recipient[FetchOutcome]
	Refresh  time.Duration
	Retry    time.Duration
}

// Fetcher periodically pulls the forecast and publishes a Summary for every
// successful response.
type Fetcher struct {
	cfg FetcherConfig
	options
}

func NewFetcher(cfg FetcherConfig, opts ...Option) *Fetcher {
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefresh
	}
	if cfg.Retry <= 0 {
		cfg.Retry = DefaultRetry
	}
	f := &Fetcher{cfg: cfg, options: buildOptions(opts)}
	f.log = f.log.With("component", "fetcher", "source", cfg.Source.Name())
	return f
}

// RunFetchCycle makes one provider call. It returns how long to wait before
// the next cycle: the refresh interval after a success, the retry interval
// after a failure.
func (f *Fetcher) RunFetchCycle(ctx context.Context) (time.Duration, error) {
	cycle := uuid.NewString()
	start := f.clock.Now()

	oc, err := f.cfg.Source.FetchForecast(ctx)
	var summary weather.Summary
	if err == nil {
		summary, err = weather.BuildSummary(oc, f.clock.Now())
	}
	f.metrics.RecordFetch(f.clock.Since(start), err)

	if err != nil {
		f.log.Warnw("forecast fetch failed", "cycle", cycle, "error", err, "retry_in", f.cfg.Retry)
		f.report(ctx, FetchOutcome{At: start, Err: err})
		return f.cfg.Retry, err
	}

	if err := f.cfg.Forecasts.Send(ctx, summary); err != nil {
		f.log.Debugw("forecast not delivered", "cycle", cycle, "error", err)
	}
	f.report(ctx, FetchOutcome{At: start})
	f.log.Infow("forecast updated", "cycle", cycle,
		"now", summary.Slots[0].Temperature, "tomorrow", summary.Slots[weather.SlotCount-1].Temperature,
		"next_in", f.cfg.Refresh)
	return f.cfg.Refresh, nil
}

func (f *Fetcher) report(ctx context.Context, o FetchOutcome) {
	if f.cfg.Outcomes == nil {
		return
	}
	if err := f.cfg.Outcomes.Send(ctx, o); err != nil {
		f.log.Debugw("fetch outcome not delivered", "error", err)
	}
}

// Run fetches immediately and then keeps fetching until ctx is done. A
// cycle is scheduled only after the previous one has finished.
func (f *Fetcher) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		delay, _ := f.RunFetchCycle(ctx)

		timer := f.clock.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.Chan():
		}
	}
}
