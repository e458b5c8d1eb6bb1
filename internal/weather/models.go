package weather

import (
	"time"
)

// SlotCount is the fixed number of slots in a Summary.
const SlotCount = 5

// UnknownTemperature marks a slot that has never been filled from provider
// data. It is the lowest value the three-character display field can show.
const UnknownTemperature = -99

// Label identifies a forecast slot on the display.
type Label string

const (
	LabelNow      Label = "now"
	LabelPlus2h   Label = "+2h"
	LabelPlus4h   Label = "+4h"
	LabelPlus6h   Label = "+6h"
	LabelTomorrow Label = "tmr"
)

// Labels lists the slot labels in display order.
var Labels = [SlotCount]Label{LabelNow, LabelPlus2h, LabelPlus4h, LabelPlus6h, LabelTomorrow}

// Flags are the precipitation conditions shown for a slot.
type Flags struct {
	Rain    bool `json:"rain"`
	Snow    bool `json:"snow"`
	Thunder bool `json:"thunder"`
}

// Slot is one point of the forecast.
type Slot struct {
	Label       Label `json:"label"`
	Temperature int   `json:"temperature"` // rounded "feels like"
	Flags       Flags `json:"flags"`
}

// Summary is an immutable five-slot forecast snapshot. It is always
// passed by value.
type Summary struct {
	Slots [SlotCount]Slot `json:"slots"`

	// Updated is when the summary was built from provider data. It is zero
	// for the placeholder returned by Unknown.
	Updated time.Time `json:"updated"`
}

// Unknown returns the placeholder summary shown before the first successful
// fetch: every temperature is UnknownTemperature and every flag is set, so a
// never-updated display is easy to tell apart from real data.
func Unknown() Summary {
	var s Summary
	for i, label := range Labels {
		s.Slots[i] = Slot{
			Label:       label,
			Temperature: UnknownTemperature,
			Flags:       Flags{Rain: true, Snow: true, Thunder: true},
		}
	}
	return s
}

// IsUnknown reports whether s is the startup placeholder.
func (s Summary) IsUnknown() bool {
	return s.Updated.IsZero()
}
