// Package propagate implements the drain that replicates queued profile
// changes onto every denormalized copy of a user's data.
//
// The queue is the pending_info_updates collection itself: the drain
// enumerates all current records, commits each independently, and deletes a
// record only after every target document was written. Applying a record is
// an idempotent overwrite, so drains are safe to retry, to run concurrently,
// and to be cut off mid-batch by the host's execution budget.
package propagate

import (
	"context"
	"fmt"

	commentstore "github.com/courseloop/courseloop/internal/app/store/comments"
	"github.com/courseloop/courseloop/internal/app/store/pendingupdates"
	progressstore "github.com/courseloop/courseloop/internal/app/store/progress"
	submissionstore "github.com/courseloop/courseloop/internal/app/store/submissions"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Engine applies pending profile updates to all denormalized locations.
type Engine struct {
	pending     *pendingupdates.Store
	users       *userstore.Store
	progress    *progressstore.Store
	comments    *commentstore.Store
	submissions *submissionstore.Store
	log         *zap.Logger
}

// New builds an Engine over the given database.
func New(db *mongo.Database, logger *zap.Logger) *Engine {
	return &Engine{
		pending:     pendingupdates.New(db),
		users:       userstore.New(db),
		progress:    progressstore.New(db),
		comments:    commentstore.New(db),
		submissions: submissionstore.New(db),
		log:         logger,
	}
}

// DrainPendingUpdates processes every pending record to completion and
// returns the number of records fully applied and retired.
//
// Records are processed independently: one user's failure is logged and
// leaves that record queued for the next cycle, but never blocks the rest
// of the batch. Only a failure to enumerate the queue is returned.
func (e *Engine) DrainPendingUpdates(ctx context.Context) (int, error) {
	records, err := e.pending.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending updates: %w", err)
	}

	applied := 0
	for _, rec := range records {
		if err := e.applyRecord(ctx, rec); err != nil {
			e.log.Error("pending update left queued for retry",
				zap.String("user_id", rec.UserID.Hex()),
				zap.Error(err))
			continue
		}
		applied++
	}

	if applied > 0 {
		e.log.Info("drained pending profile updates",
			zap.Int("applied", applied),
			zap.Int("queued", len(records)))
	}
	return applied, nil
}

// applyRecord fans one record out to every denormalized location and the
// canonical user document, then deletes the record. The record is treated as
// atomic: any write failure keeps it queued and the whole record is
// re-applied next cycle.
func (e *Engine) applyRecord(ctx context.Context, rec models.PendingInfoUpdate) error {
	patch := rec.Patch()

	// A record with no fields has nothing to propagate; retire it.
	if patch.IsZero() {
		return e.pending.Delete(ctx, rec.UserID)
	}

	if _, err := e.progress.UpdateAuthorInfo(ctx, rec.UserID, patch); err != nil {
		return fmt.Errorf("update progress copies: %w", err)
	}
	if _, err := e.comments.UpdateAuthorInfo(ctx, rec.UserID, patch); err != nil {
		return fmt.Errorf("update comment copies: %w", err)
	}
	if _, err := e.submissions.UpdateAuthorInfo(ctx, rec.UserID, patch); err != nil {
		return fmt.Errorf("update submission copies: %w", err)
	}

	// The canonical document goes through the same path so every profile
	// write in the system funnels through the queue.
	if err := e.users.ApplyProfileInfo(ctx, rec.UserID, patch); err != nil {
		return fmt.Errorf("update canonical user: %w", err)
	}

	if err := e.pending.Delete(ctx, rec.UserID); err != nil {
		return fmt.Errorf("retire pending record: %w", err)
	}
	return nil
}
