package webform

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/aixcyberchallenge/data-form/internal/app"
	"github.com/aixcyberchallenge/data-form/internal/form"
	"github.com/aixcyberchallenge/data-form/internal/types"
)

var tracer = otel.Tracer("github.com/aixcyberchallenge/data-form/internal/webform")

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "form.html"

// echo.Renderer over the embedded page templates
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Serves the form page. One controller backs every visitor, so only one
// submission is in flight at a time.
type Handler struct {
	app        *app.App
	controller *form.Controller
}

func NewHandler(a *app.App, controller *form.Controller) *Handler {
	return &Handler{app: a, controller: controller}
}

func (h *Handler) AddRoutes(e *echo.Echo) error {
	renderer, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	e.GET("/", h.Index)
	e.POST("/", h.Submit)
	e.GET("/existing/", h.Existing)

	return nil
}

func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, pageTemplate, newPageUI(h.app.Environment.Name, form.Fields{}))
}

func (h *Handler) Submit(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Submit")
	defer span.End()

	var fields form.Fields
	if err := c.Bind(&fields); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to bind form")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("failed parsing form data"),
		)
	}

	page := newPageUI(h.app.Environment.Name, fields)
	outcome := h.controller.Submit(ctx, page)

	status := http.StatusOK
	var validationErr *form.ValidationError
	switch {
	case outcome.Succeeded():
		span.SetStatus(codes.Ok, "submitted")
	case errors.Is(outcome.Err, form.ErrSubmissionInProgress):
		page.ShowStatus(form.StatusError, outcome.Message)
		status = http.StatusConflict
	case errors.As(outcome.Err, &validationErr):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusBadGateway
	}

	if !outcome.Succeeded() {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Message)
	}

	return c.Render(status, pageTemplate, page)
}

// Existing proxies the data endpoint's GET; the body is JSON null when it cannot be loaded.
func (h *Handler) Existing(c echo.Context) error {
	data := h.controller.LoadExisting(c.Request().Context())
	if data == nil {
		return c.JSONBlob(http.StatusOK, []byte("null"))
	}
	return c.JSONBlob(http.StatusOK, data)
}
