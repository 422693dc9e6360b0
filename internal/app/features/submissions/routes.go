// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Get("/mine", h.ServeMine)
	r.Get("/courses/{courseID}/exercises/{exerciseID}", h.ServeByExercise)
	r.Post("/{submissionID}/result", h.HandleResult)
	return r
}
