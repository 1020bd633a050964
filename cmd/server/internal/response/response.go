package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aixcyberchallenge/data-form/internal/types"
)

const (
	MessageRequired    = "key and value are required"
	MessageInvalidJSON = "invalid JSON"
	MessageSaved       = "Data saved successfully"
	MessageRunning     = "API running"
	storageErrorPrefix = "storage error: "
)

var (
	InternalServerError = echo.NewHTTPError(
		http.StatusInternalServerError,
		types.StringError("something went wrong"),
	)
	InvalidJSONError = echo.NewHTTPError(http.StatusBadRequest, types.StringError(MessageInvalidJSON))
)

// StorageError reports a store failure by the store's own error code
func StorageError(code string) *echo.HTTPError {
	return echo.NewHTTPError(
		http.StatusInternalServerError,
		types.StringError(storageErrorPrefix+code),
	)
}

// RequiredError keeps the field breakdown from the validator next to the fixed message
func RequiredError(err error) *echo.HTTPError {
	body := types.ValidationError(err)
	body.Message = MessageRequired
	return echo.NewHTTPError(http.StatusBadRequest, body)
}
