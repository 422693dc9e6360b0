// internal/app/features/courses/handler.go
package courses

import (
	"net/http"

	courseprivatestore "github.com/courseloop/courseloop/internal/app/store/courseprivate"
	coursestore "github.com/courseloop/courseloop/internal/app/store/courses"
	progressstore "github.com/courseloop/courseloop/internal/app/store/progress"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/httpjson"
	"github.com/courseloop/courseloop/internal/app/system/invites"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all course endpoints.
type Handler struct {
	Courses  *coursestore.Store
	Private  *courseprivatestore.Store
	Users    *userstore.Store
	Progress *progressstore.Store
	Gate     *invites.Gate
	Log      *zap.Logger
}

// NewHandler constructs a Handler bound to the given Mongo database, the
// invitation gate, and logger.
func NewHandler(db *mongo.Database, gate *invites.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		Courses:  coursestore.New(db),
		Private:  courseprivatestore.New(db),
		Users:    userstore.New(db),
		Progress: progressstore.New(db),
		Gate:     gate,
		Log:      logger,
	}
}

// courseID pulls and validates the {courseID} URL parameter. On failure it
// writes a 400 and returns false.
func courseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid course id")
		return primitive.NilObjectID, false
	}
	return id, true
}
