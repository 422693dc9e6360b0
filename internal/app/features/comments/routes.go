// internal/app/features/comments/routes.go
package comments

import (
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Reading a thread is public; posting needs a session.
	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/", h.HandleCreate)
	})

	return r
}
