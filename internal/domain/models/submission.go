// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission statuses.
const (
	SubmissionPending = "pending" // queued for checking
	SubmissionPassed  = "passed"
	SubmissionFailed  = "failed"
)

// Submission is one code run against an exercise. Like comments and progress
// records, it embeds a denormalized copy of the author's profile fields.
type Submission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID   primitive.ObjectID `bson:"course_id" json:"course_id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	Author     AuthorInfo         `bson:"author" json:"author"`

	Code     string `bson:"code" json:"code"`
	Language string `bson:"language" json:"language"`
	Status   string `bson:"status" json:"status"`
	Output   string `bson:"output,omitempty" json:"output,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
