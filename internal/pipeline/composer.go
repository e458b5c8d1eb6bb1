package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-clock/internal/actor"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/weather"
)

// TimeLayout is the format of the first display row.
const TimeLayout = "Mon Jan 02 15:04:05"

// DefaultComposeInterval is how often the display rows are rebuilt.
const DefaultComposeInterval = 10 * time.Second

// Bounds of the three-character temperature field.
const (
	minShownTemperature = -99
	maxShownTemperature = 999
)

// Compose builds the four display rows for summary at time t shown in loc.
// It has no side effects.
func Compose(summary weather.Summary, t time.Time, loc *time.Location) display.Rows {
	if loc == nil {
		loc = time.UTC
	}

	labels := make([]string, weather.SlotCount)
	temps := make([]string, weather.SlotCount)
	var flags strings.Builder
	for i, slot := range summary.Slots {
		labels[i] = fmt.Sprintf("%-3s", slot.Label)
		temps[i] = fmt.Sprintf("%3d", clampTemperature(slot.Temperature))
		flags.WriteString(flagGroup(slot.Flags))
	}

	return display.NewRows(
		t.In(loc).Format(TimeLayout),
		strings.Join(labels, " "),
		strings.Join(temps, " "),
		flags.String(),
	)
}

func clampTemperature(v int) int {
	switch {
	case v < minShownTemperature:
		return minShownTemperature
	case v > maxShownTemperature:
		return maxShownTemperature
	}
	return v
}

func flagGroup(f weather.Flags) string {
	b := []byte("    ")
	if f.Rain {
		b[0] = 'R'
	}
	if f.Snow {
		b[1] = 'S'
	}
	if f.Thunder {
		b[2] = 'T'
	}
	return string(b)
}

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	Rows     actor.Recipient[display.Rows]
	Interval time.Duration
	Location *time.Location
}

// Composer keeps the latest forecast and turns it into display rows on a
// fixed cadence.
type Composer struct {
	cfg       ComposerConfig
	forecasts actor.Mailbox[weather.Summary]
	options
}

func NewComposer(cfg ComposerConfig, opts ...Option) *Composer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultComposeInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	c := &Composer{
		cfg:       cfg,
		forecasts: actor.NewMailbox[weather.Summary](mailboxSize),
		options:   buildOptions(opts),
	}
	c.log = c.log.With("component", "composer")
	return c
}

// Forecasts is where the fetcher delivers new summaries.
func (c *Composer) Forecasts() actor.Recipient[weather.Summary] {
	return c.forecasts
}

// Run composes immediately and then every interval until ctx is done. The
// stored summary starts as weather.Unknown.
func (c *Composer) Run(ctx context.Context) error {
	summary := weather.Unknown()
	timer := c.clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-c.forecasts:
			summary = s
		case <-timer.Chan():
			summary = drain(c.forecasts, summary)
			c.tick(ctx, summary)
			timer.Reset(c.cfg.Interval)
		}
	}
}

func (c *Composer) tick(ctx context.Context, summary weather.Summary) {
	rows := Compose(summary, c.clock.Now(), c.cfg.Location)
	c.metrics.RecordCompose()
	if err := c.cfg.Rows.Send(ctx, rows); err != nil {
		c.log.Debugw("rows not delivered", "error", err)
	}
}

// drain returns the newest pending message, or cur if the mailbox is empty.
func drain[T any](box actor.Mailbox[T], cur T) T {
	for {
		select {
		case v := <-box:
			cur = v
		default:
			return cur
		}
	}
}
