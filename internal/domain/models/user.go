// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the canonical source of truth for a learner's public profile.
//
// NOTE:
//   - Denormalized copies of DisplayName/ImageURL live on progress records,
//     comments, and submissions. They are kept in sync by the propagation
//     engine, never written directly by handlers.
//   - Profile edits do not write this document directly either; they enqueue
//     a PendingInfoUpdate and the drain applies it here along with the copies.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName   string             `bson:"display_name" json:"display_name"`
	DisplayNameCI string             `bson:"display_name_ci" json:"display_name_ci"` // lowercase, diacritics-stripped
	Email         string             `bson:"email" json:"email"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`

	// Course membership. A course id lives in at most one of the two lists;
	// completing a course moves it from Courses to Completed.
	Courses   []primitive.ObjectID `bson:"courses,omitempty" json:"courses,omitempty"`
	Completed []primitive.ObjectID `bson:"completed,omitempty" json:"completed,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
