package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-clock/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOneCallURL is the OpenWeatherMap One Call 3.0 endpoint.
const DefaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

// OneCallConfig identifies the location and account used for requests.
type OneCallConfig struct {
	BaseURL   string
	Latitude  string
	Longitude string
	Units     string
	AppID     string
}

// OneCallClient implements weather.Source for the OpenWeatherMap One Call API.
type OneCallClient struct {
	name    string
	cfg     OneCallConfig
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Source = (*OneCallClient)(nil)

func NewOneCallClient(client *http.Client, cfg OneCallConfig) *OneCallClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOneCallURL
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather-onecall",
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OneCallClient{
		name:    "openweathermap",
		cfg:     cfg,
		client:  client,
		circuit: cb,
	}
}

func (p *OneCallClient) Name() string {
	return p.name
}

// URL returns the request URL without performing it.
func (p *OneCallClient) URL() string {
	values := url.Values{}
	values.Set("units", p.cfg.Units)
	values.Set("lat", p.cfg.Latitude)
	values.Set("lon", p.cfg.Longitude)
	values.Set("appid", p.cfg.AppID)
	return fmt.Sprintf("%s?%s", p.cfg.BaseURL, values.Encode())
}

// FetchForecast performs one One Call request.
func (p *OneCallClient) FetchForecast(ctx context.Context) (weather.OneCall, error) {
	if p.cfg.AppID == "" {
		return weather.OneCall{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.OneCall{}, err
	}
	defer resp.Body.Close()

	var payload weather.OneCall
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.OneCall{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return payload, nil
}
