package weather

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Offsets into the provider arrays used for the summary slots.
const (
	hourlyPlus2h  = 2
	hourlyPlus4h  = 4
	hourlyPlus6h  = 6
	dailyTomorrow = 1

	minHourly = hourlyPlus6h + 1
	minDaily  = dailyTomorrow + 1
)

// ErrIncompleteForecast is returned when the provider response does not
// contain the hourly or daily entries a summary needs.
var ErrIncompleteForecast = errors.New("incomplete forecast")

// BuildSummary derives the five-slot summary from a provider response.
func BuildSummary(oc OneCall, now time.Time) (Summary, error) {
	if len(oc.Hourly) < minHourly {
		return Summary{}, fmt.Errorf("%w: %d hourly entries, need %d", ErrIncompleteForecast, len(oc.Hourly), minHourly)
	}
	if len(oc.Daily) < minDaily {
		return Summary{}, fmt.Errorf("%w: %d daily entries, need %d", ErrIncompleteForecast, len(oc.Daily), minDaily)
	}

	tomorrow := oc.Daily[dailyTomorrow]
	slots := [SlotCount]Slot{
		newSlot(LabelNow, oc.Current.FeelsLike, oc.Current.Weather),
		newSlot(LabelPlus2h, oc.Hourly[hourlyPlus2h].FeelsLike, oc.Hourly[hourlyPlus2h].Weather),
		newSlot(LabelPlus4h, oc.Hourly[hourlyPlus4h].FeelsLike, oc.Hourly[hourlyPlus4h].Weather),
		newSlot(LabelPlus6h, oc.Hourly[hourlyPlus6h].FeelsLike, oc.Hourly[hourlyPlus6h].Weather),
		newSlot(LabelTomorrow, tomorrow.FeelsLike.Day, tomorrow.Weather),
	}

	if now.IsZero() {
		now = time.Now()
	}
	return Summary{Slots: slots, Updated: now.UTC()}, nil
}

func newSlot(label Label, feelsLike float64, conditions []Condition) Slot {
	return Slot{
		Label:       label,
		Temperature: RoundTemperature(feelsLike),
		Flags:       FlagsFromCodes(conditionCodes(conditions)),
	}
}

// RoundTemperature rounds half away from zero and saturates to the int8
// range the display was designed for.
func RoundTemperature(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	switch {
	case r > math.MaxInt8:
		return math.MaxInt8
	case r < math.MinInt8:
		return math.MinInt8
	}
	return int(r)
}
