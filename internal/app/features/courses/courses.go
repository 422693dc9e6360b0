// internal/app/features/courses/courses.go
package courses

import (
	"net/http"
	"time"

	coursestore "github.com/courseloop/courseloop/internal/app/store/courses"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// createCourseRequest is the POST /courses body.
type createCourseRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Visibility  string         `json:"visibility"`
	Levels      []models.Level `json:"levels"`
}

// HandleCreate handles POST /courses. The acting user becomes the first
// instructor.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createCourseRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.Courses.Create(r.Context(), models.Course{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
		Instructors: []primitive.ObjectID{userID},
		Levels:      req.Levels,
	})
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httpjson.Write(w, http.StatusCreated, course)
}

// ServeCourse handles GET /courses/{courseID}.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	course, err := h.Courses.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "course not found")
			return
		}
		h.Log.Error("load course failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, course)
}

// ServeList handles GET /courses. With ?mine=1 it lists the acting user's
// taught courses; otherwise the browsable catalog.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Course
		err  error
	)
	if r.URL.Query().Get("mine") == "1" {
		userID, ok := auth.CurrentUserID(r)
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		list, err = h.Courses.ListByInstructor(r.Context(), userID)
	} else {
		list, err = h.Courses.ListVisible(r.Context(), time.Now())
	}
	if err != nil {
		h.Log.Error("list courses failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, list)
}

// updateCourseRequest is the PUT /courses/{courseID} body. Absent fields are
// left unchanged.
type updateCourseRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Visibility  *string              `json:"visibility"`
	Instructors []primitive.ObjectID `json:"instructors"`
	RevealsAt   *time.Time           `json:"reveals_at"`
	FreezeAt    *time.Time           `json:"freeze_at"`
	Levels      []models.Level       `json:"levels"`
}

// HandleUpdate handles PUT /courses/{courseID}. Every field here is
// privileged, so the whole endpoint sits behind the instructor gate.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	if !h.Gate.IsCourseInstructor(r.Context(), id, userID) {
		httpjson.Error(w, http.StatusForbidden, "not authorized")
		return
	}

	var req updateCourseRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Courses.Apply(r.Context(), id, coursestore.Update{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
		Instructors: req.Instructors,
		RevealsAt:   req.RevealsAt,
		FreezeAt:    req.FreezeAt,
		Levels:      req.Levels,
	})
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
}
