package queue

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/aixcyberchallenge/data-form/internal/queue")

//go:generate mockgen -destination ./mock/mock.go -package mock . Queuer,MessageHandler

// Notification channel for stored records
type Queuer interface {
	// May block while queuing data
	Enqueue(ctx context.Context, message any) error
	// Waits for one message and hands it to handler. Blocks until a message arrives or ctx ends.
	//
	// If handler returns poison error message should not be requeued, other errors are non fatal for a message.
	Dequeue(ctx context.Context, timeout time.Duration, handler MessageHandler) error
}

type MessageHandler interface {
	Handle(ctx context.Context, message []byte) error
}

// Mark a message as unprocessable. It will not be requeued.
type PoisonError struct {
	Err error
}

func (p PoisonError) Error() string {
	return fmt.Sprintf("Poisoned message: %v", p.Err)
}

func (p PoisonError) Unwrap() error {
	return p.Err
}

func WrapPoisonError(err error) error {
	return &PoisonError{Err: err}
}
