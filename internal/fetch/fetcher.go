package fetch

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer(
	"github.com/aixcyberchallenge/data-form/internal/fetch",
)

//go:generate mockgen -destination ./mock/mock.go -package mock . Fetcher

type Fetcher interface {
	// Caller closes the returned body
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
