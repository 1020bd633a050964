package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const name = "github.com/aixcyberchallenge/data-form/server/middleware"

var tracer = otel.Tracer(name)

// Context key holding the request's received time
const TimeKey = "time"

// Sets a fixed time as the authoritative time for a request being received
func Time(now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, span := tracer.Start(c.Request().Context(), "Time")
			defer span.End()

			t := now()
			c.Set(TimeKey, t)

			span.AddEvent("set_time", trace.WithAttributes(
				attribute.Int64("time_ms", t.UnixMilli()),
			))

			span.RecordError(nil)
			span.SetStatus(codes.Ok, "set time")
			return next(c)
		}
	}
}
