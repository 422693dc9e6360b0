// internal/app/features/session/handler.go
package session

import (
	"net/http"

	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns session issuance. Authentication happens upstream at the
// identity layer; this endpoint trusts the asserted email and maps it to a
// user document, creating one on first sign-in.
type Handler struct {
	Sessions *auth.SessionManager
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sm,
		Users:    userstore.New(db),
		Log:      logger,
	}
}

// signInRequest is the POST /session body.
type signInRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url"`
}

// HandleSignIn handles POST /session.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httpjson.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	switch {
	case err == mongo.ErrNoDocuments:
		created, err := h.Users.Create(r.Context(), models.User{
			Email:       req.Email,
			DisplayName: req.DisplayName,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			// A concurrent first sign-in can win the insert race.
			if err == userstore.ErrDuplicateEmail {
				if u, err = h.Users.GetByEmail(r.Context(), req.Email); err == nil {
					break
				}
			}
			h.Log.Error("create user failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		u = &created
	case err != nil:
		h.Log.Error("load user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	err = h.Sessions.SignIn(w, r, auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName})
	if err != nil {
		h.Log.Error("write session failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, u)
}

// HandleSignOut handles DELETE /session.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("clear session failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"signed_out": true})
}

// ServeCurrent handles GET /session: the signed-in user's document.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.Log.Error("load user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, u)
}
