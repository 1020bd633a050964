package cmderrors

import (
	"errors"
	"fmt"

	"github.com/aixcyberchallenge/data-form/internal/form"
)

// Process exit codes for the dataform commands
const (
	CodeOK         = 0
	CodeValidation = 1
	CodeRequest    = 2
	CodeConfig     = 3
)

// Carries an exit code along with an error so the app can exit correctly
type ExitError struct {
	Err  error
	Code int
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d", e.Code)
	}

	return fmt.Sprintf("%d: %s", e.Code, e.Err.Error())
}

func (e ExitError) Unwrap() error {
	return e.Err
}

// Wrap an error with an exit code
func ExitErrorWrap(code int, err error) error {
	return ExitError{Code: code, Err: err}
}

// Code maps an error returned by a command to its exit code
func Code(err error) int {
	if err == nil {
		return CodeOK
	}

	var exitErr ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var validationErr *form.ValidationError
	if errors.As(err, &validationErr) {
		return CodeValidation
	}

	// request failures, a busy form and anything unclassified
	return CodeRequest
}
