// internal/app/features/submissions/handler.go
package submissions

import (
	"context"
	"net/http"
	"time"

	insightstore "github.com/courseloop/courseloop/internal/app/store/insights"
	progressstore "github.com/courseloop/courseloop/internal/app/store/progress"
	substore "github.com/courseloop/courseloop/internal/app/store/submissions"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/invites"
	"github.com/courseloop/courseloop/internal/app/system/txn"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the submission endpoints.
type Handler struct {
	Client      *mongo.Client
	Submissions *substore.Store
	Insights    *insightstore.Store
	Progress    *progressstore.Store
	Users       *userstore.Store
	Gate        *invites.Gate
	Log         *zap.Logger
}

// NewHandler constructs a Handler. The Mongo client is needed (in addition
// to the database) because submission creation runs in a transaction.
func NewHandler(client *mongo.Client, db *mongo.Database, gate *invites.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		Client:      client,
		Submissions: substore.New(db),
		Insights:    insightstore.New(db),
		Progress:    progressstore.New(db),
		Users:       userstore.New(db),
		Gate:        gate,
		Log:         logger,
	}
}

// createRequest is the POST /submissions body.
type createRequest struct {
	CourseID   primitive.ObjectID `json:"course_id"`
	ExerciseID primitive.ObjectID `json:"exercise_id"`
	Code       string             `json:"code"`
	Language   string             `json:"language"`
}

// HandleCreate handles POST /submissions: stores the code run and records
// the "runs" insight at both course and exercise scope. The insert and both
// counter increments share one transaction so a recorded run always has its
// submission and vice versa.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CourseID.IsZero() || req.ExerciseID.IsZero() {
		httpjson.Error(w, http.StatusBadRequest, "course_id and exercise_id are required")
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.Log.Error("load user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	var created models.Submission
	err = txn.WithTransaction(r.Context(), h.Client, func(ctx context.Context) error {
		var err error
		created, err = h.Submissions.Create(ctx, models.Submission{
			CourseID:   req.CourseID,
			ExerciseID: req.ExerciseID,
			Author: models.AuthorInfo{
				UserID:      userID,
				DisplayName: u.DisplayName,
				ImageURL:    u.ImageURL,
			},
			Code:     req.Code,
			Language: req.Language,
		})
		if err != nil {
			return err
		}
		return h.Insights.Record(ctx, models.MetricRuns, req.CourseID, req.ExerciseID, time.Now())
	})
	if err != nil {
		if err == substore.ErrEmptyCode {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("create submission failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusCreated, created)
}

// ServeByExercise handles GET /submissions/courses/{courseID}/exercises/{exerciseID}:
// every run submitted for one exercise, newest first. Instructor-gated.
func (h *Handler) ServeByExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	courseID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "exerciseID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exercise id")
		return
	}

	if !h.Gate.IsCourseInstructor(r.Context(), courseID, userID) {
		httpjson.Error(w, http.StatusForbidden, "not authorized")
		return
	}

	list, err := h.Submissions.ListByExercise(r.Context(), exerciseID)
	if err != nil {
		h.Log.Error("list exercise submissions failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, list)
}

// ServeMine handles GET /submissions/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.Submissions.ListByUser(r.Context(), userID)
	if err != nil {
		h.Log.Error("list submissions failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, list)
}
