package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-clock/internal/weather"
	"golang.org/x/time/rate"
)

// RateLimited guards a weather.Source with a token bucket. A call over the
// limit fails immediately instead of waiting, so the caller's own retry
// schedule stays in charge and no request is sent.
type RateLimited struct {
	source  weather.Source
	limiter *rate.Limiter
	name    string
}

var _ weather.Source = (*RateLimited)(nil)

// NewRateLimited allows perHour calls per hour with the given burst. A
// non-positive perHour disables the limit.
func NewRateLimited(source weather.Source, perHour float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perHour > 0 {
		limit = rate.Every(time.Duration(float64(time.Hour) / perHour))
	}
	return &RateLimited{
		source:  source,
		limiter: rate.NewLimiter(limit, burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

func (r *RateLimited) Name() string {
	return r.name
}

func (r *RateLimited) FetchForecast(ctx context.Context) (weather.OneCall, error) {
	if !r.limiter.Allow() {
		return weather.OneCall{}, fmt.Errorf("%w: local budget for %s exhausted", ErrRateLimited, r.source.Name())
	}
	return r.source.FetchForecast(ctx)
}
