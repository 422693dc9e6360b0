// internal/app/features/insights/handler.go
package insights

import (
	"net/http"

	insightstore "github.com/courseloop/courseloop/internal/app/store/insights"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/invites"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves usage counters to course instructors.
type Handler struct {
	Insights *insightstore.Store
	Gate     *invites.Gate
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, gate *invites.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		Insights: insightstore.New(db),
		Gate:     gate,
		Log:      logger,
	}
}

// gate parses {courseID} and checks the acting user is an instructor.
// Writes the error response itself when the check fails.
func (h *Handler) gate(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid course id")
		return primitive.NilObjectID, false
	}
	if !h.Gate.IsCourseInstructor(r.Context(), id, userID) {
		httpjson.Error(w, http.StatusForbidden, "not authorized")
		return primitive.NilObjectID, false
	}
	return id, true
}

// courseResponse is the GET /insights/courses/{courseID} payload.
type courseResponse struct {
	Course    *models.InsightDoc  `json:"course"`
	Exercises []models.InsightDoc `json:"exercises"`
}

// ServeCourse handles GET /insights/courses/{courseID}: the course-overall
// aggregate plus every per-exercise aggregate. A course with no recorded
// events yet yields zero-valued aggregates, not a 404.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gate(w, r)
	if !ok {
		return
	}

	course, err := h.Insights.GetCourse(r.Context(), id)
	if err != nil && err != mongo.ErrNoDocuments {
		h.Log.Error("load course insights failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if course == nil {
		course = &models.InsightDoc{CourseID: id}
	}

	exercises, err := h.Insights.ListExercises(r.Context(), id)
	if err != nil {
		h.Log.Error("list exercise insights failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, courseResponse{Course: course, Exercises: exercises})
}

// ServeExercise handles GET /insights/courses/{courseID}/exercises/{exerciseID}.
func (h *Handler) ServeExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gate(w, r)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "exerciseID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exercise id")
		return
	}

	doc, err := h.Insights.GetExercise(r.Context(), id, exerciseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			doc = &models.InsightDoc{CourseID: id, ExerciseID: &exerciseID}
		} else {
			h.Log.Error("load exercise insights failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	httpjson.Write(w, http.StatusOK, doc)
}
