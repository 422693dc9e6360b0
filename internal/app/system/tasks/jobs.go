// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	mailoutboxstore "github.com/courseloop/courseloop/internal/app/store/mailoutbox"
	"github.com/courseloop/courseloop/internal/app/system/mailer"
	"github.com/courseloop/courseloop/internal/app/system/propagate"
	"go.uber.org/zap"
)

// outboxBatchSize caps how many outbox messages one mail job run delivers.
const outboxBatchSize = 100

// DrainJob creates the job that periodically drains pending profile updates.
// This is the scheduled trigger for the propagation engine; the drain itself
// is idempotent, so overlapping or repeated runs are harmless.
func DrainJob(engine *propagate.Engine, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "pending-update-drain",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := engine.DrainPendingUpdates(ctx)
			return err
		},
	}
}

// OutboxMailJob creates the job that delivers pending mail-outbox messages.
// Failures increment the message's attempt counter and leave it queued, so a
// provider outage delays mail instead of losing it.
func OutboxMailJob(outbox *mailoutboxstore.Store, sender *mailer.Sender, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "mail-outbox-delivery",
		Interval: interval,
		Run: func(ctx context.Context) error {
			msgs, err := outbox.ListPending(ctx, outboxBatchSize)
			if err != nil {
				return err
			}

			sent := 0
			for _, msg := range msgs {
				err := sender.Send(mailer.Email{
					To:       msg.To,
					Subject:  msg.Subject,
					TextBody: msg.TextBody,
					HTMLBody: msg.HTMLBody,
				})
				if err != nil {
					logger.Warn("outbox delivery failed",
						zap.String("message_id", msg.ID.Hex()),
						zap.Int("attempts", msg.Attempts+1),
						zap.Error(err))
					if merr := outbox.MarkAttemptFailed(ctx, msg.ID, err.Error()); merr != nil {
						logger.Error("failed to record delivery failure",
							zap.String("message_id", msg.ID.Hex()),
							zap.Error(merr))
					}
					continue
				}
				if merr := outbox.MarkSent(ctx, msg.ID); merr != nil {
					logger.Error("failed to mark message sent",
						zap.String("message_id", msg.ID.Hex()),
						zap.Error(merr))
					continue
				}
				sent++
			}

			if sent > 0 {
				logger.Info("delivered outbox mail", zap.Int("count", sent))
			}
			return nil
		},
	}
}
