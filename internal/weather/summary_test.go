package weather

import (
	"errors"
	"testing"
	"time"
)

func hour(feels float64, codes ...int) Hour {
	return Hour{FeelsLike: feels, Weather: conditions(codes...)}
}

func conditions(codes ...int) []Condition {
	out := make([]Condition, 0, len(codes))
	for _, c := range codes {
		out = append(out, Condition{ID: c})
	}
	return out
}

func sampleOneCall() OneCall {
	oc := OneCall{
		Current: Current{FeelsLike: -16.6, Weather: conditions(211)},
	}
	for i := 0; i < 48; i++ {
		oc.Hourly = append(oc.Hourly, hour(float64(i), 800))
	}
	oc.Hourly[2] = hour(2.5, 500)
	oc.Hourly[4] = hour(-0.4, 601)
	oc.Hourly[6] = hour(7.49, 800)
	for i := 0; i < 8; i++ {
		oc.Daily = append(oc.Daily, Day{FeelsLike: DayFeelsLike{Day: 30}})
	}
	oc.Daily[1] = Day{FeelsLike: DayFeelsLike{Day: 21.5}, Weather: conditions(300, 615)}
	return oc
}

func TestBuildSummaryMapsFixedOffsets(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s, err := BuildSummary(sampleOneCall(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [SlotCount]Slot{
		{Label: LabelNow, Temperature: -17, Flags: Flags{Rain: true, Thunder: true}},
		{Label: LabelPlus2h, Temperature: 3, Flags: Flags{Rain: true}},
		{Label: LabelPlus4h, Temperature: 0, Flags: Flags{Snow: true}},
		{Label: LabelPlus6h, Temperature: 7},
		{Label: LabelTomorrow, Temperature: 22, Flags: Flags{Rain: true, Snow: true}},
	}
	if s.Slots != want {
		t.Fatalf("unexpected slots:\n got %+v\nwant %+v", s.Slots, want)
	}
	if !s.Updated.Equal(now) {
		t.Fatalf("expected updated %v, got %v", now, s.Updated)
	}
	if s.IsUnknown() {
		t.Fatalf("built summary must not be the placeholder")
	}
}

func TestBuildSummaryKeepsFiveSlotsForMinimalResponse(t *testing.T) {
	oc := sampleOneCall()
	oc.Hourly = oc.Hourly[:7]
	oc.Daily = oc.Daily[:2]

	s, err := BuildSummary(oc, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, label := range Labels {
		if s.Slots[i].Label != label {
			t.Fatalf("slot %d: expected label %q, got %q", i, label, s.Slots[i].Label)
		}
	}
}

func TestBuildSummaryRejectsShortArrays(t *testing.T) {
	tests := []struct {
		name   string
		hourly int
		daily  int
	}{
		{name: "short hourly", hourly: 6, daily: 8},
		{name: "short daily", hourly: 48, daily: 1},
		{name: "empty", hourly: 0, daily: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc := sampleOneCall()
			oc.Hourly = oc.Hourly[:tt.hourly]
			oc.Daily = oc.Daily[:tt.daily]

			_, err := BuildSummary(oc, time.Now())
			if !errors.Is(err, ErrIncompleteForecast) {
				t.Fatalf("expected ErrIncompleteForecast, got %v", err)
			}
		})
	}
}

func TestRoundTemperature(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.5, 1},
		{-0.5, -1},
		{-16.6, -17},
		{1.49, 1},
		{300, 127},
		{-300, -128},
	}
	for _, tt := range tests {
		if got := RoundTemperature(tt.in); got != tt.want {
			t.Errorf("RoundTemperature(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestUnknownPlaceholder(t *testing.T) {
	s := Unknown()
	if !s.IsUnknown() {
		t.Fatalf("placeholder must report IsUnknown")
	}
	for i, slot := range s.Slots {
		if slot.Label != Labels[i] {
			t.Fatalf("slot %d: expected label %q, got %q", i, Labels[i], slot.Label)
		}
		if slot.Temperature != UnknownTemperature {
			t.Fatalf("slot %d: expected sentinel temperature, got %d", i, slot.Temperature)
		}
		if slot.Flags != (Flags{Rain: true, Snow: true, Thunder: true}) {
			t.Fatalf("slot %d: expected all flags set, got %+v", i, slot.Flags)
		}
	}
}
