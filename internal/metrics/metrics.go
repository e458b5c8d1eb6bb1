package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collector holds the clock's metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	FetchTotal        *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	RenderTotal       *prometheus.CounterVec
	ComposeTicksTotal prometheus.Counter
	ForecastAge       prometheus.Gauge
}

// NewCollector registers the metrics with reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		FetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Forecast fetch attempts by result",
			},
			[]string{"result"},
		),

		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of forecast fetch attempts in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
			},
		),

		RenderTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_total",
				Help:      "Render attempts by target and result",
			},
			[]string{"target", "result"},
		),

		ComposeTicksTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compose_ticks_total",
				Help:      "Display compositions produced",
			},
		),

		ForecastAge: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "forecast_age_seconds",
				Help:      "Age of the forecast currently shown",
			},
		),
	}
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// RecordFetch counts one fetch attempt and its duration.
func (c *Collector) RecordFetch(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.FetchTotal.WithLabelValues(result(err)).Inc()
	c.FetchDuration.Observe(d.Seconds())
}

// RecordRender counts one render attempt on target.
func (c *Collector) RecordRender(target string, err error) {
	if c == nil {
		return
	}
	c.RenderTotal.WithLabelValues(target, result(err)).Inc()
}

// RecordCompose counts one composition.
func (c *Collector) RecordCompose() {
	if c == nil {
		return
	}
	c.ComposeTicksTotal.Inc()
}

// SetForecastAge publishes the age of the displayed forecast.
func (c *Collector) SetForecastAge(age time.Duration) {
	if c == nil {
		return
	}
	c.ForecastAge.Set(age.Seconds())
}
