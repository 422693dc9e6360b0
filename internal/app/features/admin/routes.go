// internal/app/features/admin/routes.go
package admin

import (
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/drain", h.HandleDrain)
	return r
}
