// Package shutdown decides when the clock should stop. A Monitor watches one
// source (key presses or process signals) and sends at most one notification.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/logger"
)

// Monitor blocks until shutdown is requested or ctx is done. It sends on
// notify at most once and never blocks on the send.
type Monitor interface {
	Run(ctx context.Context, notify chan<- struct{})
}

// NewNotify returns a notification channel suitable for any Monitor.
func NewNotify() chan struct{} {
	return make(chan struct{}, 1)
}

func trigger(notify chan<- struct{}) bool {
	select {
	case notify <- struct{}{}:
		return true
	default:
		return false
	}
}

// Key polling cadence.
const (
	PollWindow   = 16 * time.Millisecond
	PollPeriod   = time.Second
	quitKey      = "q"
	interruptKey = "ctrl+c"
)

// KeyMonitor watches the key presses of an interactive terminal. Once per
// PollPeriod it opens a PollWindow during which pending presses are read;
// "q" or ctrl+c requests shutdown and other keys are discarded.
type KeyMonitor struct {
	keys  <-chan string
	clock clockwork.Clock
	log   *logger.Logger
}

var _ Monitor = (*KeyMonitor)(nil)

func NewKeyMonitor(keys <-chan string, clock clockwork.Clock, log *logger.Logger) *KeyMonitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KeyMonitor{keys: keys, clock: clock, log: log}
}

func (m *KeyMonitor) Run(ctx context.Context, notify chan<- struct{}) {
	for {
		key, ok := m.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if ok {
			m.log.Infow("shutdown requested", "key", key)
			if !trigger(notify) {
				m.log.Debugw("shutdown notification dropped")
			}
			return
		}

		rearm := m.clock.NewTimer(PollPeriod - PollWindow)
		select {
		case <-ctx.Done():
			rearm.Stop()
			return
		case <-rearm.Chan():
		}
	}
}

// poll reads presses until the window closes. It reports the quit key if
// one was seen.
func (m *KeyMonitor) poll(ctx context.Context) (string, bool) {
	window := m.clock.NewTimer(PollWindow)
	defer window.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", false
		case key, open := <-m.keys:
			if !open {
				// The terminal is gone; nothing more will arrive.
				m.keys = nil
				continue
			}
			if key == quitKey || key == interruptKey {
				return key, true
			}
		case <-window.Chan():
			return "", false
		}
	}
}

// NotifyFunc derives a context that is cancelled when a signal arrives.
type NotifyFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// SignalMonitor requests shutdown on SIGINT or SIGTERM.
type SignalMonitor struct {
	notifyContext NotifyFunc
	log           *logger.Logger
}

var _ Monitor = (*SignalMonitor)(nil)

// NewSignalMonitor watches SIGINT and SIGTERM. A nil notify uses
// signal.NotifyContext.
func NewSignalMonitor(notify NotifyFunc, log *logger.Logger) *SignalMonitor {
	if notify == nil {
		notify = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SignalMonitor{notifyContext: notify, log: log}
}

func (m *SignalMonitor) Run(ctx context.Context, notify chan<- struct{}) {
	sigCtx, stop := m.notifyContext(ctx)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() != nil {
		return
	}
	m.log.Infow("shutdown requested", "reason", "signal")
	if !trigger(notify) {
		m.log.Debugw("shutdown notification dropped")
	}
}
