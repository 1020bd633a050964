package upload

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/aixcyberchallenge/data-form/internal/upload")

//go:generate mockgen -destination ./mock/mock.go -package mock . Uploader

// Object store the data API writes records to
type Uploader interface {
	// Create / Overwrite object contents by `name`
	Upload(ctx context.Context, reader io.ReadSeeker, length int64, name string, contentType string) error
	// Verify the bucket or container can be reached. Failures are *StoreError.
	Check(ctx context.Context) error
	// Provide an identifier for where files are being uploaded to. Useful for logging and auditing purposes.
	StoreIdentifier(ctx context.Context) (string, error)
}

// Failure reported by the backing store, `Code` is the store's own error code
type StoreError struct {
	Err  error
	Code string
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Code used when the store gave no error code of its own
const CodeUnknown = "Unknown"
