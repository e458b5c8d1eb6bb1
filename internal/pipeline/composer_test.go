package pipeline

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/actor"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/weather"
)

var (
	plusTwo = time.FixedZone("+02:00", 2*60*60)
	noon    = time.Date(2024, time.January, 2, 13, 4, 5, 0, time.UTC)
)

func TestComposeUnknown(t *testing.T) {
	rows := Compose(weather.Unknown(), noon, plusTwo)
	want := display.NewRows(
		"Tue Jan 02 15:04:05",
		"now +2h +4h +6h tmr",
		"-99 -99 -99 -99 -99",
		"RST RST RST RST RST ",
	)
	if rows != want {
		t.Errorf("Compose(Unknown) =\n%q\nwant\n%q", rows, want)
	}
}

func TestComposeForecast(t *testing.T) {
	summary, err := weather.BuildSummary(sampleOneCall(), noon)
	if err != nil {
		t.Fatal(err)
	}
	rows := Compose(summary, noon, plusTwo)

	want := [display.RowCount]string{
		"Tue Jan 02 15:04:05",
		"now +2h +4h +6h tmr",
		"-17   3   6   8  13",
		"RST     R           ",
	}
	for i, row := range rows {
		if string(row) != want[i] {
			t.Errorf("row %d = %q, want %q", i, row, want[i])
		}
	}
}

func TestComposeLeadingSlot(t *testing.T) {
	summary := weather.Unknown()
	summary.Slots[0].Temperature = -17
	rows := Compose(summary, noon, plusTwo)

	if got := string(rows[2][:4]); got != "-17 " {
		t.Errorf("temperature row starts %q, want %q", got, "-17 ")
	}
	if got := string(rows[3][:4]); got != "RST " {
		t.Errorf("flag row starts %q, want %q", got, "RST ")
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	summary, err := weather.BuildSummary(sampleOneCall(), noon)
	if err != nil {
		t.Fatal(err)
	}
	if a, b := Compose(summary, noon, plusTwo), Compose(summary, noon, plusTwo); a != b {
		t.Errorf("Compose differs between calls:\n%q\n%q", a, b)
	}
}

func TestComposeClampsTemperatures(t *testing.T) {
	summary := weather.Unknown()
	summary.Slots[0].Temperature = -128
	summary.Slots[1].Temperature = 1000
	summary.Slots[2].Temperature = 0
	rows := Compose(summary, noon, nil)

	if got, want := string(rows[2]), "-99 999   0 -99 -99"; got != want {
		t.Errorf("temperature row = %q, want %q", got, want)
	}
	if got, want := string(rows[0]), "Tue Jan 02 13:04:05"; got != want {
		t.Errorf("nil location row = %q, want UTC %q", got, want)
	}
}

func TestComposerTicks(t *testing.T) {
	clock := clockwork.NewFakeClockAt(noon)
	out := actor.NewMailbox[display.Rows](4)
	c := NewComposer(ComposerConfig{Rows: out, Location: plusTwo}, WithClock(clock))
	startWorker(t, c.Run)

	first := receive(t, out)
	if got := string(first[2]); got != "-99 -99 -99 -99 -99" {
		t.Errorf("first composition = %q, want placeholder", got)
	}

	summary, err := weather.BuildSummary(sampleOneCall(), noon)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Forecasts().Send(t.Context(), summary); err != nil {
		t.Fatal(err)
	}

	clock.BlockUntil(1)
	clock.Advance(DefaultComposeInterval)
	second := receive(t, out)
	if got := string(second[0]); got != "Tue Jan 02 15:04:15" {
		t.Errorf("time row = %q", got)
	}
	if got := string(second[2][:4]); got != "-17 " {
		t.Errorf("temperature row = %q, want new forecast", second[2])
	}
}
