package cmds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aixcyberchallenge/data-form/internal/cmderrors"
	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/queue"
	"github.com/aixcyberchallenge/data-form/internal/types"
	"github.com/aixcyberchallenge/data-form/internal/validator"
)

var errNoQueueConfig = errors.New(
	"server.storage.azure with queue_url and queue is required to watch notifications",
)

// Prints every stored record notification as one JSON line
type notificationPrinter struct {
	out      io.Writer
	validate validator.CustomValidator
}

var _ queue.MessageHandler = (*notificationPrinter)(nil)

func newNotificationPrinter(out io.Writer) *notificationPrinter {
	return &notificationPrinter{out: out, validate: validator.Create()}
}

func (p *notificationPrinter) Handle(_ context.Context, message []byte) error {
	var notification types.StoredNotification
	if err := json.Unmarshal(message, &notification); err != nil {
		return queue.WrapPoisonError(fmt.Errorf("failed to parse notification: %w", err))
	}

	if err := p.validate.Validate(&notification); err != nil {
		return queue.WrapPoisonError(err)
	}

	line, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(p.out, string(line))
	return err
}

func newQueuer(cfg *config.Config, pollInterval time.Duration) (queue.Queuer, error) {
	if cfg.Server == nil || cfg.Server.Storage == nil || cfg.Server.Storage.Azure == nil {
		return nil, errNoQueueConfig
	}

	az := cfg.Server.Storage.Azure
	if az.QueueURL == "" || az.Queue == "" {
		return nil, errNoQueueConfig
	}

	return queue.NewAzureQueuer(az.Name, az.Key, az.QueueURL, az.Queue, queue.WithPollInterval(pollInterval))
}

// Handle up to `count` messages, or until ctx ends when count is 0
func watch(ctx context.Context, q queue.Queuer, handler queue.MessageHandler, timeout time.Duration, count int) error {
	l := logger.Component("watch")

	for handled := 0; count == 0 || handled < count; handled++ {
		err := q.Dequeue(ctx, timeout, handler)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			l.Warn("failed to dequeue notification", "error", err)
		}
	}

	return nil
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		count        int
		timeout      time.Duration
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications for records the data API stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			q, err := newQueuer(cfg, pollInterval)
			if err != nil {
				return cmderrors.ExitErrorWrap(cmderrors.CodeConfig, err)
			}

			return watch(cmd.Context(), q, newNotificationPrinter(cmd.OutOrStdout()), timeout, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many messages, 0 watches until interrupted")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time allowed to handle one message")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", time.Second, "Wait between polls of an empty queue")

	return cmd
}
