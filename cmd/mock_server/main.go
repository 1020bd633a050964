package main

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/aixcyberchallenge/data-form/cmd/mock_server/docs"
	"github.com/aixcyberchallenge/data-form/cmd/mock_server/routes/data"
	"github.com/aixcyberchallenge/data-form/internal/validator"
)

// @title		Mock Data API
// @version	1.0.0
func main() {
	e := echo.New()

	validate := validator.Create()
	e.Validator = &validate

	e.Pre(
		middleware.AddTrailingSlashWithConfig(
			middleware.TrailingSlashConfig{Skipper: func(c echo.Context) bool {
				return strings.Contains(c.Request().URL.Path, "swagger")
			}},
		),
	)

	e.Use(
		middleware.Logger(),
		middleware.CORS(),
	)

	e.GET("/swagger/*", echoswagger.WrapHandler)

	data.NewStore(time.Now).AddRoutes(e)

	e.Logger.Fatal(e.Start(":1324"))
}
