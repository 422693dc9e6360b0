// internal/app/features/insights/routes.go
package insights

import (
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/courses/{courseID}", h.ServeCourse)
	r.Get("/courses/{courseID}/exercises/{exerciseID}", h.ServeExercise)
	return r
}
