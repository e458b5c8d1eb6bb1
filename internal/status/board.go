package status

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/weather-clock/internal/actor"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/pipeline"
	"github.com/i474232898/weather-clock/internal/weather"
)

var (
	// ErrNoForecast is returned when no fetch has succeeded yet.
	ErrNoForecast = errors.New("no forecast received yet")
)

// boardMailboxSize bounds queued updates; updates that do not fit are
// dropped since the next one replaces them anyway.
const boardMailboxSize = 16

// Snapshot is a copy of what the clock currently knows and shows.
type Snapshot struct {
	Summary             weather.Summary `json:"summary"`
	Rows                display.Rows    `json:"rows"`
	LastAttempt         time.Time       `json:"last_attempt"`
	LastSuccess         time.Time       `json:"last_success"`
	LastError           string          `json:"last_error,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
}

// Forecast returns the displayed summary, or ErrNoForecast while the
// placeholder is still shown.
func (s Snapshot) Forecast() (weather.Summary, error) {
	if s.Summary.IsUnknown() {
		return weather.Summary{}, ErrNoForecast
	}
	return s.Summary, nil
}

// Age is how old the forecast is at now. It is zero without a forecast.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.Summary.IsUnknown() {
		return 0
	}
	return now.Sub(s.Summary.Updated)
}

type message interface {
	isBoardMessage()
}

type forecastMsg struct{ summary weather.Summary }

type rowsMsg struct{ rows display.Rows }

type outcomeMsg struct{ outcome pipeline.FetchOutcome }

type snapshotMsg struct{ reply chan<- Snapshot }

func (forecastMsg) isBoardMessage() {}
func (rowsMsg) isBoardMessage()     {}
func (outcomeMsg) isBoardMessage()  {}
func (snapshotMsg) isBoardMessage() {}

// Board collects copies of the pipeline's messages so they can be read
// without touching the workers.
type Board struct {
	inbox actor.Mailbox[message]
}

func NewBoard() *Board {
	return &Board{inbox: actor.NewMailbox[message](boardMailboxSize)}
}

// Forecasts, Rows and Outcomes never block the sender; an update that does
// not fit in the mailbox is dropped.
func (b *Board) Forecasts() actor.Recipient[weather.Summary] {
	return actor.RecipientFunc[weather.Summary](func(_ context.Context, s weather.Summary) error {
		return b.inbox.TrySend(forecastMsg{summary: s})
	})
}

func (b *Board) Rows() actor.Recipient[display.Rows] {
	return actor.RecipientFunc[display.Rows](func(_ context.Context, r display.Rows) error {
		return b.inbox.TrySend(rowsMsg{rows: r})
	})
}

func (b *Board) Outcomes() actor.Recipient[pipeline.FetchOutcome] {
	return actor.RecipientFunc[pipeline.FetchOutcome](func(_ context.Context, o pipeline.FetchOutcome) error {
		return b.inbox.TrySend(outcomeMsg{outcome: o})
	})
}

// Snapshot asks the board for its current state.
func (b *Board) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := b.inbox.Send(ctx, snapshotMsg{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run serves updates and snapshot requests until ctx is done.
func (b *Board) Run(ctx context.Context) error {
	state := Snapshot{Summary: weather.Unknown()}
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-b.inbox:
			switch msg := m.(type) {
			case forecastMsg:
				state.Summary = msg.summary
			case rowsMsg:
				state.Rows = msg.rows
			case outcomeMsg:
				state.LastAttempt = msg.outcome.At
				if msg.outcome.Err != nil {
					state.LastError = msg.outcome.Err.Error()
					state.ConsecutiveFailures++
				} else {
					state.LastSuccess = msg.outcome.At
					state.LastError = ""
					state.ConsecutiveFailures = 0
				}
			case snapshotMsg:
				msg.reply <- state
			}
		}
	}
}
