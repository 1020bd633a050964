package form

import (
	"encoding/json"
	"errors"
)

const (
	MessageSending = "Sending data..."
	MessageSaved   = "Data saved successfully!"

	errorPrefix = "Error: "
)

var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// Values of the four inputs as currently entered
type Fields struct {
	Key         string `form:"key"         validate:"notblank"`
	Value       string `form:"value"       validate:"notblank"`
	Category    string `form:"category"`
	Description string `form:"description"`
}

type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// UI is the surface a form is rendered on. Calls happen on the submitting goroutine.
type UI interface {
	Fields() Fields
	SetSubmitEnabled(enabled bool)
	ShowStatus(kind StatusKind, message string)
	// Clear every input
	Reset()
}

// Rejected before reaching the network because a required field is blank
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// How a single submission resolved
type Outcome struct {
	Err      error
	Result   Result
	Message  string
	Response json.RawMessage
}

func (o Outcome) Succeeded() bool {
	return o.Result == ResultSuccess
}
