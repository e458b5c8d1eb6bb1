package weather

// OneCall is the OpenWeatherMap One Call 3.0 response body.
type OneCall struct {
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Timezone       string   `json:"timezone"`
	TimezoneOffset int64    `json:"timezone_offset"`
	Current        Current  `json:"current"`
	Minutely       []Minute `json:"minutely"`
	Hourly         []Hour   `json:"hourly"`
	Daily          []Day    `json:"daily"`
	Alerts         []Alert  `json:"alerts"`
}

// Condition is one entry of a "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Current holds the current conditions.
type Current struct {
	Dt         int64       `json:"dt"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	Pressure   int64       `json:"pressure"`
	Humidity   int64       `json:"humidity"`
	DewPoint   float64     `json:"dew_point"`
	UVI        float64     `json:"uvi"`
	Clouds     int64       `json:"clouds"`
	Visibility int64       `json:"visibility"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    int64       `json:"wind_deg"`
	Weather    []Condition `json:"weather"`
}

// Minute is one entry of the minutely precipitation forecast.
type Minute struct {
	Dt            int64   `json:"dt"`
	Precipitation float64 `json:"precipitation"`
}

// Hour is one entry of the hourly forecast.
type Hour struct {
	Dt         int64       `json:"dt"`
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	Pressure   int64       `json:"pressure"`
	Humidity   int64       `json:"humidity"`
	DewPoint   float64     `json:"dew_point"`
	UVI        float64     `json:"uvi"`
	Clouds     int64       `json:"clouds"`
	Visibility int64       `json:"visibility"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    int64       `json:"wind_deg"`
	WindGust   float64     `json:"wind_gust"`
	Weather    []Condition `json:"weather"`
	Pop        float64     `json:"pop"`
}

// Day is one entry of the daily forecast. Index 0 is today.
type Day struct {
	Dt        int64        `json:"dt"`
	Sunrise   int64        `json:"sunrise"`
	Sunset    int64        `json:"sunset"`
	Moonrise  int64        `json:"moonrise"`
	Moonset   int64        `json:"moonset"`
	MoonPhase float64      `json:"moon_phase"`
	Summary   string       `json:"summary"`
	Temp      DayTemp      `json:"temp"`
	FeelsLike DayFeelsLike `json:"feels_like"`
	Pressure  int64        `json:"pressure"`
	Humidity  int64        `json:"humidity"`
	DewPoint  float64      `json:"dew_point"`
	WindSpeed float64      `json:"wind_speed"`
	WindDeg   int64        `json:"wind_deg"`
	WindGust  float64      `json:"wind_gust"`
	Weather   []Condition  `json:"weather"`
	Clouds    int64        `json:"clouds"`
	Pop       float64      `json:"pop"`
	Rain      *float64     `json:"rain,omitempty"`
	UVI       float64      `json:"uvi"`
}

// DayTemp holds the daily temperature breakdown.
type DayTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DayFeelsLike holds the daily perceived temperature breakdown.
type DayFeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// Alert is a government weather alert.
type Alert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func conditionCodes(items []Condition) []int {
	codes := make([]int, 0, len(items))
	for _, c := range items {
		codes = append(codes, c.ID)
	}
	return codes
}
