// internal/app/features/submissions/result.go
package submissions

import (
	"context"
	"net/http"
	"time"

	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/txn"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// resultRequest is the POST /submissions/{submissionID}/result body.
type resultRequest struct {
	Status string `json:"status"`
	Output string `json:"output"`
}

// HandleResult handles POST /submissions/{submissionID}/result: records the
// outcome of checking a submission. A passing result marks the exercise
// solved on the author's progress record and records the "completions"
// insight; the three writes share one transaction.
//
// Only an instructor of the submission's course may post a result. Learners
// cannot grade their own runs.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "submissionID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	var req resultRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != models.SubmissionPassed && req.Status != models.SubmissionFailed {
		httpjson.Error(w, http.StatusBadRequest, "status must be passed or failed")
		return
	}

	sub, err := h.Submissions.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "submission not found")
			return
		}
		h.Log.Error("load submission failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !h.Gate.IsCourseInstructor(r.Context(), sub.CourseID, userID) {
		httpjson.Error(w, http.StatusForbidden, "not authorized")
		return
	}

	err = txn.WithTransaction(r.Context(), h.Client, func(ctx context.Context) error {
		if err := h.Submissions.SetResult(ctx, id, req.Status, req.Output); err != nil {
			return err
		}
		if req.Status != models.SubmissionPassed {
			return nil
		}
		if err := h.Progress.MarkSolved(ctx, sub.CourseID, sub.Author.UserID, sub.ExerciseID); err != nil {
			return err
		}
		return h.Insights.Record(ctx, models.MetricCompletions, sub.CourseID, sub.ExerciseID, time.Now())
	})
	if err != nil {
		h.Log.Error("record result failed",
			zap.String("submission_id", id.Hex()),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"recorded": true})
}
