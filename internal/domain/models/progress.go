// internal/domain/models/progress.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progress tracks one user's advancement through one course. Exactly one
// document per (course_id, author.user_id) pair.
type Progress struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	Author   AuthorInfo         `bson:"author" json:"author"`

	// Exercise ids the user has solved, in completion order.
	Solved []primitive.ObjectID `bson:"solved,omitempty" json:"solved,omitempty"`
	Score  int64                `bson:"score" json:"score"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
