// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a forum post attached to an exercise. The body is sanitized on
// write; the embedded author info is maintained by the propagation engine.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID   primitive.ObjectID `bson:"course_id" json:"course_id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	Author     AuthorInfo         `bson:"author" json:"author"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	EditedAt   *time.Time         `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
}
