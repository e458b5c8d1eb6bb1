// Package pipeline wires the three periodic workers of the clock: the
// forecast fetcher, the display composer and the render dispatcher. Each
// worker is a goroutine that owns its state and is fed through a mailbox.
package pipeline

import (
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/logger"
	"github.com/i474232898/weather-clock/internal/metrics"
)

// mailboxSize is the buffer of every worker mailbox. Messages replace
// state wholesale, so a short queue is enough.
const mailboxSize = 4

type options struct {
	clock   clockwork.Clock
	log     *logger.Logger
	metrics *metrics.Collector
}

// Option customises a worker.
type Option func(*options)

// WithClock sets the clock used for all waits. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the worker logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		clock: clockwork.NewRealClock(),
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
