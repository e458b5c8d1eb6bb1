package weather

// OpenWeatherMap condition code groups.
// See https://openweathermap.org/weather-conditions.
const (
	groupThunderstorm = 2
	groupDrizzle      = 3
	groupRain         = 5
	groupSnow         = 6
)

// FlagsFromCodes derives precipitation flags from a set of condition codes.
// Each flag is evaluated over the whole set:
//
//	2xx => thunder and rain
//	3xx, 4xx, 5xx => rain
//	6xx => snow
func FlagsFromCodes(codes []int) Flags {
	var f Flags
	for _, code := range codes {
		if code < 0 {
			continue
		}
		group := code / 100
		switch {
		case group == groupThunderstorm:
			f.Thunder = true
			f.Rain = true
		case group >= groupDrizzle && group <= groupRain:
			f.Rain = true
		case group == groupSnow:
			f.Snow = true
		}
	}
	return f
}
