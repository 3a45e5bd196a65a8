package monitoring

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware instruments every request except the metrics endpoint itself.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Path()
		if path == "/metrics" {
			return next(c)
		}

		// begin timer to measure the request duration
		timer := prometheus.NewTimer(HttpRequestDuration.WithLabelValues(path))

		// increment number of active connections
		ActiveConnections.Inc()

		err := next(c)

		// record request duration (post processing)
		timer.ObserveDuration()

		// decrement total number of active connections (post processing)
		ActiveConnections.Dec()

		status := c.Response().Status
		if err != nil {
			status = 500
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
		}
		HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()

		return err
	}
}
