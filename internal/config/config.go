package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Run modes.
const (
	ModeLCD      = "lcd"
	ModeTerminal = "terminal"
)

// EnvPrefix prefixes every environment variable, e.g. WEATHER_CLOCK_APPID.
const EnvPrefix = "WEATHER_CLOCK"

// DefaultConfigFile is read when present and no --config flag is given.
var DefaultConfigFile = "/etc/weather-clock.toml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the process configuration.
type Config struct {
	Latitude  float64 `mapstructure:"latitude" validate:"latitude"`
	Longitude float64 `mapstructure:"longitude" validate:"longitude"`
	Units     string  `mapstructure:"units" validate:"oneof=standard metric imperial"`
	AppID     string  `mapstructure:"appid" validate:"required"`
	Mode      string  `mapstructure:"mode" validate:"oneof=lcd terminal"`

	LCD struct {
		Bus  int    `mapstructure:"bus" validate:"gte=0"`
		Addr uint16 `mapstructure:"addr" validate:"gte=3,lte=119"` // 7-bit, reserved ranges excluded
	} `mapstructure:"lcd"`

	Display struct {
		UTCOffset string `mapstructure:"utc_offset" validate:"required"`
	} `mapstructure:"display"`

	HTTP struct {
		Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	} `mapstructure:"http"`

	Fetch struct {
		Refresh     time.Duration `mapstructure:"refresh" validate:"gt=0"`
		Retry       time.Duration `mapstructure:"retry" validate:"gt=0"`
		RatePerHour float64       `mapstructure:"rate_per_hour" validate:"gte=0"` // 0 disables the limiter
	} `mapstructure:"fetch"`

	Compose struct {
		Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	} `mapstructure:"compose"`

	Render struct {
		LCDInterval      time.Duration `mapstructure:"lcd_interval" validate:"gt=0"`
		TerminalInterval time.Duration `mapstructure:"terminal_interval" validate:"gt=0"`
	} `mapstructure:"render"`

	Status struct {
		Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
	} `mapstructure:"status"`

	Log struct {
		Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

var defaults = map[string]interface{}{
	"latitude":                 0.0,
	"longitude":                0.0,
	"units":                    "metric",
	"appid":                    "",
	"mode":                     ModeLCD,
	"lcd.bus":                  1,
	"lcd.addr":                 0x27,
	"display.utc_offset":       "+02:00",
	"http.timeout":             "10s",
	"fetch.refresh":            "1h",
	"fetch.retry":              "10s",
	"fetch.rate_per_hour":      360.0,
	"compose.interval":         "10s",
	"render.lcd_interval":      "30s",
	"render.terminal_interval": "5s",
	"status.listen":            "",
	"log.level":                "info",
	"log.file":                 "weather-clock.log",
}

// flags maps command-line flags onto configuration keys.
var flags = []struct {
	name, key, usage string
}{
	{"mode", "mode", "run mode: lcd or terminal"},
	{"latitude", "latitude", "forecast latitude"},
	{"longitude", "longitude", "forecast longitude"},
	{"units", "units", "standard, metric or imperial"},
	{"lcd-bus", "lcd.bus", "I2C bus number of the LCD"},
	{"lcd-addr", "lcd.addr", "I2C address of the LCD backpack"},
	{"utc-offset", "display.utc_offset", "offset the clock is shown in, e.g. +02:00"},
	{"status-listen", "status.listen", "address of the status API, empty disables it"},
	{"log-level", "log.level", "debug, info, warn or error"},
	{"log-file", "log.file", "log file used in terminal mode"},
}

// Load reads configuration from, lowest precedence first: defaults, the
// config file, WEATHER_CLOCK_* environment variables and command-line flags.
// A .env file only fills in variables that are not already set.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("weather-clock", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path of a TOML, YAML or JSON config file")
	envFile := fs.String("env-file", ".env", "dotenv file loaded into the environment if present")
	for _, f := range flags {
		fs.String(f.name, "", f.usage)
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, *configFile); err != nil {
		return nil, err
	}

	for _, f := range flags {
		if fl := fs.Lookup(f.name); fl.Changed {
			v.Set(f.key, fl.Value.String())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return nil
		}
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and the display offset.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Location returns the fixed zone for display.utc_offset ("+02:00", "-05:30"
// or "Z").
func (c *Config) Location() (*time.Location, error) {
	t, err := time.Parse("Z07:00", c.Display.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("display.utc_offset %q: want +HH:MM", c.Display.UTCOffset)
	}
	_, offset := t.Zone()
	return time.FixedZone(c.Display.UTCOffset, offset), nil
}

// Coordinates returns latitude and longitude as sent to the provider.
func (c *Config) Coordinates() (lat, lon string) {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64), strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// RenderInterval is the redraw cadence of the configured mode.
func (c *Config) RenderInterval() time.Duration {
	if c.Mode == ModeTerminal {
		return c.Render.TerminalInterval
	}
	return c.Render.LCDInterval
}
