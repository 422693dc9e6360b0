// internal/app/features/profile/handler.go
package profile

import (
	"net/http"

	"github.com/courseloop/courseloop/internal/app/store/pendingupdates"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the profile endpoints.
type Handler struct {
	Users   *userstore.Store
	Pending *pendingupdates.Store
	Log     *zap.Logger
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Pending: pendingupdates.New(db),
		Log:     logger,
	}
}

// ServeProfile handles GET /profile: the signed-in user's canonical document.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("load profile failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, u)
}

// updateProfileRequest carries a partial profile edit. Absent fields are
// left alone; an explicit empty string is a real value.
type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	ImageURL    *string `json:"image_url"`
}

// HandleUpdateProfile handles PUT /profile.
//
// The edit is not applied to the user document or any denormalized copy
// here; it is queued as a pending update and the propagation engine applies
// it everywhere on the next drain. Clients observe the change with a small
// delay bounded by the drain interval.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := models.ProfilePatch{DisplayName: req.DisplayName, ImageURL: req.ImageURL}
	if patch.IsZero() {
		httpjson.Error(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.Pending.Enqueue(r.Context(), userID, patch); err != nil {
		h.Log.Error("enqueue profile update failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusAccepted, map[string]bool{"queued": true})
}
