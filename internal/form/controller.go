package form

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/aixcyberchallenge/data-form/internal/app"
	"github.com/aixcyberchallenge/data-form/internal/types"
	"github.com/aixcyberchallenge/data-form/internal/validator"
)

const name = "github.com/aixcyberchallenge/data-form/internal/form"

var tracer = otel.Tracer(name)

// Drives one form: validate, post once, report. Only one submission runs at a time.
type Controller struct {
	app         *app.App
	now         func() time.Time
	submissions metric.Int64Counter
	validate    validator.CustomValidator
	state       atomic.Int32
}

type Option func(*Controller)

// WithClock overrides the time source used for submission timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func NewController(a *app.App, opts ...Option) *Controller {
	counter, err := otel.Meter(name).Int64Counter(
		"dataform.submissions",
		metric.WithDescription("Form submissions by outcome"),
	)
	if err != nil {
		a.Logger.Warn("failed to create submissions counter", "error", err)
		counter = noop.Int64Counter{}
	}

	c := &Controller{
		app:         a,
		now:         time.Now,
		submissions: counter,
		validate:    validator.Create(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Submit runs one submission against `ui` and reports how it resolved.
//
// A call made while another submission is in flight fails with ErrSubmissionInProgress
// and leaves `ui` untouched.
func (c *Controller) Submit(ctx context.Context, ui UI) Outcome {
	ctx, span := tracer.Start(ctx, "Controller.Submit")
	defer span.End()

	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateValidating)) {
		c.app.Logger.Warn("rejected submission while another is in progress", "state", c.State())
		return c.record(ctx, span, "busy", Outcome{
			Result:  ResultFailure,
			Err:     ErrSubmissionInProgress,
			Message: errorPrefix + ErrSubmissionInProgress.Error(),
		})
	}
	defer c.state.Store(int32(StateIdle))

	fields := ui.Fields()
	if err := c.validateFields(fields); err != nil {
		ui.ShowStatus(StatusError, err.Error())
		return c.record(ctx, span, "validation_error", Outcome{
			Result:  ResultFailure,
			Err:     err,
			Message: err.Error(),
		})
	}

	submission := types.Submission{
		Key:         fields.Key,
		Value:       fields.Value,
		Category:    fields.Category,
		Description: fields.Description,
		Timestamp:   types.FormatTimestamp(c.now()),
	}
	span.SetAttributes(attribute.String("key", submission.Key))

	c.state.Store(int32(StateSubmitting))
	ui.SetSubmitEnabled(false)
	defer ui.SetSubmitEnabled(true)
	ui.ShowStatus(StatusInfo, MessageSending)

	resp, err := c.app.API.Save(ctx, submission)
	if err != nil {
		message := errorPrefix + err.Error()
		c.app.Logger.Error("submission failed", "key", submission.Key, "error", err)
		ui.ShowStatus(StatusError, message)
		return c.record(ctx, span, "request_error", Outcome{
			Result:  ResultFailure,
			Err:     err,
			Message: message,
		})
	}

	c.app.Logger.Info("submission saved", "key", submission.Key)
	ui.ShowStatus(StatusSuccess, MessageSaved)
	ui.Reset()

	return c.record(ctx, span, "success", Outcome{
		Result:   ResultSuccess,
		Message:  MessageSaved,
		Response: resp,
	})
}

// LoadExisting reads the data endpoint. Failures are logged and produce nil.
func (c *Controller) LoadExisting(ctx context.Context) json.RawMessage {
	ctx, span := tracer.Start(ctx, "Controller.LoadExisting")
	defer span.End()

	data, err := c.app.API.Fetch(ctx)
	if err != nil {
		c.app.Logger.Error("error fetching data", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch data")
		return nil
	}

	c.app.Logger.Debug("data loaded", "bytes", len(data))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "loaded data")
	return data
}

// key is checked before value, so a form missing both reports key
func (c *Controller) validateFields(fields Fields) error {
	err := c.validate.Validate(fields)
	if err == nil {
		return nil
	}

	var validationErrors govalidator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return &ValidationError{Field: validationErrors[0].Field()}
	}

	return err
}

func (c *Controller) record(ctx context.Context, span trace.Span, outcome string, o Outcome) Outcome {
	c.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if o.Succeeded() {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "submission saved")
	} else {
		span.RecordError(o.Err)
		span.SetStatus(codes.Error, o.Message)
	}
	return o
}
