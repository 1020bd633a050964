package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aixcyberchallenge/data-form/cmd/server/internal/middleware"
)

func TestTime(t *testing.T) {
	fixed := time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.Time(func() time.Time { return fixed })(func(c echo.Context) error {
		got, ok := c.Get(middleware.TimeKey).(time.Time)
		require.True(t, ok, "time should be set")
		assert.Equal(t, fixed, got)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
