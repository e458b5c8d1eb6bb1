package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/i474232898/weather-clock/internal/actor"
	httpapi "github.com/i474232898/weather-clock/internal/api/http"
	"github.com/i474232898/weather-clock/internal/config"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/logger"
	"github.com/i474232898/weather-clock/internal/metrics"
	"github.com/i474232898/weather-clock/internal/pipeline"
	"github.com/i474232898/weather-clock/internal/scheduler"
	"github.com/i474232898/weather-clock/internal/shutdown"
	"github.com/i474232898/weather-clock/internal/status"
	"github.com/i474232898/weather-clock/internal/weather"
	"github.com/i474232898/weather-clock/internal/weather/providers"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "weather-clock: %v\n", err)
		os.Exit(1)
	}

	log, closeLog := newLogger(cfg)
	defer closeLog()

	// fatal is only used before any periodic loop has started.
	fatal := func(msg string, err error) {
		fmt.Fprintf(os.Stderr, "weather-clock: %s: %v\n", msg, err)
		log.Fatalw(msg, "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("weather_clock", reg)

	loc, err := cfg.Location()
	if err != nil {
		fatal("invalid display offset", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	lat, lon := cfg.Coordinates()
	var source weather.Source = providers.NewOneCallClient(httpClient, providers.OneCallConfig{
		Latitude:  lat,
		Longitude: lon,
		Units:     cfg.Units,
		AppID:     cfg.AppID,
	})
	source = providers.NewRateLimited(source, cfg.Fetch.RatePerHour, 1)

	board := status.NewBoard()

	var app interface{ ShutdownWithTimeout(time.Duration) error }
	if cfg.Status.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Status.Listen)
		if err != nil {
			fatal("status listener", err)
		}
		fiberApp := httpapi.NewApp(board, reg, log)
		go func() {
			if err := fiberApp.Listener(ln); err != nil {
				log.Warnw("status server stopped", "error", err)
			}
		}()
		app = fiberApp
		log.Infow("status server listening", "addr", ln.Addr().String())
	}

	target, monitors, release, err := openTarget(cfg, log)
	if err != nil {
		fatal("open display", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMetrics(collector),
	}
	dispatcher := pipeline.NewDispatcher(target, cfg.RenderInterval(), opts...)
	composer := pipeline.NewComposer(pipeline.ComposerConfig{
		Rows:     actor.Tee(dispatcher.Rows(), board.Rows()),
		Interval: cfg.Compose.Interval,
		Location: loc,
	}, opts...)
	fetcher := pipeline.NewFetcher(pipeline.FetcherConfig{
		Source:    source,
		Forecasts: actor.Tee(composer.Forecasts(), board.Forecasts()),
		Outcomes:  board.Outcomes(),
		Refresh:   cfg.Fetch.Refresh,
		Retry:     cfg.Fetch.Retry,
	}, opts...)

	heartbeat := scheduler.New(board, scheduler.DefaultInterval, 2*cfg.Fetch.Refresh, collector, log)
	if err := heartbeat.Start(); err != nil {
		release()
		fatal("start heartbeat", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Errorw("worker stopped", "worker", name, "error", err)
			}
		}()
	}
	run("board", board.Run)
	run("dispatcher", dispatcher.Run)
	run("composer", composer.Run)
	run("fetcher", fetcher.Run)

	notify := shutdown.NewNotify()
	for _, m := range monitors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Run(ctx, notify)
		}()
	}

	log.Infow("weather clock started", "mode", cfg.Mode, "target", target.Name(), "source", source.Name())
	<-notify
	log.Infow("shutting down")

	cancel()
	heartbeat.Stop()
	if app != nil {
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warnw("status server shutdown", "error", err)
		}
	}
	wg.Wait()
	release()
}

func newLogger(cfg *config.Config) (*logger.Logger, func()) {
	// The terminal belongs to the TUI in terminal mode.
	if cfg.Mode != config.ModeTerminal || cfg.Log.File == "" {
		l := logger.Stdout(cfg.Log.Level)
		return l, func() { _ = l.Sync() }
	}
	l, closeFn, err := logger.File(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weather-clock: %v\n", err)
		os.Exit(1)
	}
	return l, func() { _ = closeFn() }
}

// openTarget acquires the render target of the configured mode together
// with the monitors that end the program and a release function that
// returns the device, or the terminal, to its original state.
func openTarget(cfg *config.Config, log *logger.Logger) (display.Target, []shutdown.Monitor, func(), error) {
	signals := shutdown.NewSignalMonitor(nil, log)

	if cfg.Mode == config.ModeTerminal {
		term := display.NewTerminal()
		if err := term.Start(); err != nil {
			return nil, nil, nil, fmt.Errorf("start terminal: %w", err)
		}
		release := func() {
			if err := term.Shutdown(); err != nil {
				log.Warnw("terminal shutdown", "error", err)
			}
		}
		keys := shutdown.NewKeyMonitor(term.Keys(), nil, log)
		return term, []shutdown.Monitor{keys, signals}, release, nil
	}

	lcd, err := display.NewLCD(cfg.LCD.Bus, cfg.LCD.Addr)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := lcd.Probe(); err != nil {
		return nil, nil, nil, fmt.Errorf("probe %s: %w", lcd.Name(), err)
	}
	return lcd, []shutdown.Monitor{signals}, func() {}, nil
}
