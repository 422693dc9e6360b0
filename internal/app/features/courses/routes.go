// internal/app/features/courses/routes.go
package courses

import (
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Browsing the catalog is public; everything else needs a session.
	r.Get("/", h.ServeList)
	r.Get("/{courseID}", h.ServeCourse)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)

		r.Post("/", h.HandleCreate)
		r.Put("/{courseID}", h.HandleUpdate)

		r.Post("/{courseID}/enroll", h.HandleEnroll)
		r.Post("/{courseID}/complete", h.HandleComplete)

		// Instructor-gated invitation surface.
		r.Get("/{courseID}/private", h.ServePrivate)
		r.Put("/{courseID}/private", h.HandleUpdatePrivate)
		r.Post("/{courseID}/invites/send", h.HandleSendInvites)
	})

	return r
}
