package weather

import "testing"

func TestFlagsFromCodes(t *testing.T) {
	tests := []struct {
		name  string
		codes []int
		want  Flags
	}{
		{name: "none", codes: nil, want: Flags{}},
		{name: "clear and clouds", codes: []int{800, 804, 701}, want: Flags{}},
		{name: "thunderstorm", codes: []int{211}, want: Flags{Rain: true, Thunder: true}},
		{name: "drizzle", codes: []int{300}, want: Flags{Rain: true}},
		{name: "rain upper bound", codes: []int{599}, want: Flags{Rain: true}},
		{name: "snow", codes: []int{600}, want: Flags{Snow: true}},
		{name: "snow upper bound", codes: []int{699}, want: Flags{Snow: true}},
		{name: "boundary below thunder", codes: []int{199}, want: Flags{}},
		{name: "all three", codes: []int{500, 200, 622}, want: Flags{Rain: true, Snow: true, Thunder: true}},
		// Each flag sees the full set regardless of position.
		{name: "thunder after rain", codes: []int{500, 201}, want: Flags{Rain: true, Thunder: true}},
		{name: "snow first", codes: []int{601, 800, 311}, want: Flags{Rain: true, Snow: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlagsFromCodes(tt.codes); got != tt.want {
				t.Fatalf("FlagsFromCodes(%v) = %+v, want %+v", tt.codes, got, tt.want)
			}
		})
	}
}

func TestFlagsFromCodesDeterministic(t *testing.T) {
	codes := []int{202, 313, 616}
	first := FlagsFromCodes(codes)
	for i := 0; i < 10; i++ {
		if got := FlagsFromCodes(codes); got != first {
			t.Fatalf("iteration %d: got %+v, want %+v", i, got, first)
		}
	}
}
