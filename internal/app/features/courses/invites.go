// internal/app/features/courses/invites.go
package courses

import (
	"net/http"

	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/invites"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// updatePrivateRequest is the PUT /courses/{courseID}/private body.
type updatePrivateRequest struct {
	InvitedEmails []string `json:"invited_emails"`
	MailSubject   *string  `json:"mail_subject"`
	MailText      *string  `json:"mail_text"`
}

// HandleUpdatePrivate handles PUT /courses/{courseID}/private: appends to
// the invite list and updates the invitation mail content. Instructor-gated.
// Addresses are only ever added; removing an invited address would let it be
// re-emailed, which the sent set exists to prevent.
func (h *Handler) HandleUpdatePrivate(w http.ResponseWriter, r *http.Request) {
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

	var req updatePrivateRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MailSubject != nil || req.MailText != nil {
		priv, err := h.Private.Get(r.Context(), id)
		subject, text := "", ""
		if err == nil {
			subject, text = priv.MailSubject, priv.MailText
		} else if err != mongo.ErrNoDocuments {
			h.Log.Error("load private fields failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		if req.MailSubject != nil {
			subject = *req.MailSubject
		}
		if req.MailText != nil {
			text = *req.MailText
		}
		if err := h.Private.SetMailContent(r.Context(), id, subject, text); err != nil {
			h.Log.Error("update mail content failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if len(req.InvitedEmails) > 0 {
		if err := h.Private.AddInvitedEmails(r.Context(), id, req.InvitedEmails...); err != nil {
			h.Log.Error("add invited emails failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
}

// ServePrivate handles GET /courses/{courseID}/private. Instructor-gated.
func (h *Handler) ServePrivate(w http.ResponseWriter, r *http.Request) {
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

	priv, err := h.Private.Get(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "no private fields")
			return
		}
		h.Log.Error("load private fields failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, priv)
}

// HandleSendInvites handles POST /courses/{courseID}/invites/send.
// Instructor-gated. Idempotent: a repeat call with an unchanged invite list
// reports zero sent.
func (h *Handler) HandleSendInvites(w http.ResponseWriter, r *http.Request) {
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

	sent, err := h.Gate.SendInviteEmails(r.Context(), id)
	if err != nil {
		if err == invites.ErrCourseNotFound {
			httpjson.Error(w, http.StatusNotFound, "course not found")
			return
		}
		h.Log.Error("send invites failed",
			zap.String("course_id", id.Hex()),
			zap.Int("sent", sent),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "some invitations could not be sent")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]int{"sent": sent})
}
