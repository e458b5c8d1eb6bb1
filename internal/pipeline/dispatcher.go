package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-clock/internal/actor"
	"github.com/i474232898/weather-clock/internal/display"
)

// Render cadence per target kind.
const (
	DefaultLCDInterval      = 30 * time.Second
	DefaultTerminalInterval = 5 * time.Second
)

// Dispatcher owns the render target and redraws the latest rows on every
// tick. Render failures are logged and the tick is skipped.
type Dispatcher struct {
	target   display.Target
	interval time.Duration
	rows     actor.Mailbox[display.Rows]
	options
}

func NewDispatcher(target display.Target, interval time.Duration, opts ...Option) *Dispatcher {
	if interval <= 0 {
		interval = DefaultLCDInterval
	}
	d := &Dispatcher{
		target:   target,
		interval: interval,
		rows:     actor.NewMailbox[display.Rows](mailboxSize),
		options:  buildOptions(opts),
	}
	d.log = d.log.With("component", "dispatcher", "target", target.Name())
	return d
}

// Rows is where the composer delivers new rows.
func (d *Dispatcher) Rows() actor.Recipient[display.Rows] {
	return d.rows
}

// Run renders immediately and then every interval until ctx is done. The
// first render shows four empty rows unless rows are already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	var rows display.Rows
	timer := d.clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-d.rows:
			rows = r
		case <-timer.Chan():
			rows = drain(d.rows, rows)
			err := d.render(rows)
			d.metrics.RecordRender(d.target.Name(), err)
			if err != nil {
				d.log.Debugw("render failed", "error", err)
			}
			timer.Reset(d.interval)
		}
	}
}

func (d *Dispatcher) render(rows display.Rows) (err error) {
	s, err := d.target.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", d.target.Name(), err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", d.target.Name(), cerr)
		}
	}()
	return display.Render(s, rows)
}
