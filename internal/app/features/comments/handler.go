// internal/app/features/comments/handler.go
package comments

import (
	"net/http"

	commentstore "github.com/courseloop/courseloop/internal/app/store/comments"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/normalize"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the exercise forum endpoints.
type Handler struct {
	Comments *commentstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Comments: commentstore.New(db),
		Users:    userstore.New(db),
		Log:      logger,
	}
}

// createRequest is the POST /comments body.
type createRequest struct {
	CourseID   primitive.ObjectID `json:"course_id"`
	ExerciseID primitive.ObjectID `json:"exercise_id"`
	Body       string             `json:"body"`
}

// HandleCreate handles POST /comments. The stored body is sanitized; the
// author info snapshot comes from the acting user's current profile.
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

	created, err := h.Comments.Create(r.Context(), models.Comment{
		CourseID:   req.CourseID,
		ExerciseID: req.ExerciseID,
		Author: models.AuthorInfo{
			UserID:      userID,
			DisplayName: u.DisplayName,
			ImageURL:    u.ImageURL,
		},
		Body: req.Body,
	})
	if err != nil {
		if err == commentstore.ErrEmptyBody {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("create comment failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusCreated, created)
}

// ServeList handles GET /comments?exercise_id=...: one exercise's thread,
// oldest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	raw := normalize.QueryParam(r.URL.Query().Get("exercise_id"))
	exerciseID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exercise_id")
		return
	}

	list, err := h.Comments.ListByExercise(r.Context(), exerciseID)
	if err != nil {
		h.Log.Error("list comments failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, list)
}
