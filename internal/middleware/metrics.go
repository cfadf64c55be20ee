package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/umalmyha/leads/internal/monitoring"
	"net/http"
	"strconv"
	"time"
)

// Metrics records request count and duration, errors are rendered here so that final status is observed
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			status := c.Response().Status
			monitoring.RequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)+" "+http.StatusText(status)).Inc()
			monitoring.RequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
