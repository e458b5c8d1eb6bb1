package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-clock/internal/logger"
	"github.com/i474232898/weather-clock/internal/status"
)

const snapshotTimeout = 2 * time.Second

var validate = validator.New()

// SnapshotReader is the read side of the status board.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (status.Snapshot, error)
}

// NewApp builds the status server. A nil gatherer disables /metrics.
func NewApp(board SnapshotReader, gatherer prometheus.Gatherer, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-clock",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-clock",
		})
	})

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(app, board)
	return app
}

// RegisterRoutes wires the status handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, board SnapshotReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		snap, err := snapshot(c, board)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"last_attempt":         snap.LastAttempt,
			"last_success":         snap.LastSuccess,
			"last_error":           snap.LastError,
			"consecutive_failures": snap.ConsecutiveFailures,
			"forecast_age_seconds": snap.Age(time.Now()).Seconds(),
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		snap, err := snapshot(c, board)
		if err != nil {
			return err
		}
		summary, err := snap.Forecast()
		if err != nil {
			if errors.Is(err, status.ErrNoForecast) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast received yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read forecast")
		}
		return c.JSON(summary)
	})

	v1.Get("/display", func(c *fiber.Ctx) error {
		q := displayQuery{Format: c.Query("format", "json")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := snapshot(c, board)
		if err != nil {
			return err
		}
		if q.Format == "text" {
			return c.SendString(strings.Join(snap.Rows.Strings(), "\n") + "\n")
		}
		return c.JSON(fiber.Map{"rows": snap.Rows.Strings()})
	})
}

// displayQuery holds query parameters for the display endpoint.
type displayQuery struct {
	Format string `validate:"oneof=json text"`
}

func snapshot(c *fiber.Ctx, board SnapshotReader) (status.Snapshot, error) {
	ctx, cancel := context.WithTimeout(c.UserContext(), snapshotTimeout)
	defer cancel()
	snap, err := board.Snapshot(ctx)
	if err != nil {
		return status.Snapshot{}, fiber.NewError(fiber.StatusServiceUnavailable, "status board unavailable")
	}
	return snap, nil
}

func requestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debugw("http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}
