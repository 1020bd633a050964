package data

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aixcyberchallenge/data-form/internal/types"
)

var (
	allowMethods = []string{http.MethodPost, http.MethodGet, http.MethodOptions}
	allowHeaders = []string{echo.HeaderContentType}
)

// Adds the allow origin header to GET and POST responses. OPTIONS is left to Preflight.
func corsMiddleware(allowOrigins []string) echo.MiddlewareFunc {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions
		},
		AllowOrigins: allowOrigins,
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
	})
}

// Preflight answers OPTIONS with 200 and the CORS headers, whether or not the browser
// sent Access-Control-Request-Method.
func Preflight(c echo.Context) error {
	h := c.Response().Header()
	h.Set(echo.HeaderAccessControlAllowOrigin, "*")
	h.Set(echo.HeaderAccessControlAllowHeaders, strings.Join(allowHeaders, ", "))
	h.Set(echo.HeaderAccessControlAllowMethods, strings.Join(allowMethods, ", "))

	return c.JSON(http.StatusOK, types.Message{Message: "OK"})
}
