// internal/app/features/courses/enroll.go
package courses

import (
	"net/http"

	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleEnroll handles POST /courses/{courseID}/enroll: adds the course to
// the acting user's active list and ensures a progress record exists.
// A course already completed by the user is not re-added.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	if _, err := h.Courses.GetByID(r.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "course not found")
			return
		}
		h.Log.Error("load course failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.Log.Error("load user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Users.AddCourses(r.Context(), userID, id); err != nil {
		h.Log.Error("enroll failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Seed the progress record with the current denormalized profile copy;
	// the propagation engine keeps it in sync from here on.
	err = h.Progress.Ensure(r.Context(), id, models.AuthorInfo{
		UserID:      userID,
		DisplayName: u.DisplayName,
		ImageURL:    u.ImageURL,
	})
	if err != nil {
		h.Log.Error("ensure progress failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"enrolled": true})
}

// HandleComplete handles POST /courses/{courseID}/complete: moves the course
// from the acting user's active list to the completed list.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	if err := h.Users.CompleteCourse(r.Context(), userID, id); err != nil {
		h.Log.Error("complete course failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"completed": true})
}
