// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course visibility states.
const (
	VisibilityPublic  = "public"  // listed and joinable
	VisibilityPrivate = "private" // joinable by invitation only
	VisibilityHidden  = "hidden"  // instructors only
)

// Course is owned collectively by its instructors. Every mutation of a
// privileged field (instructor list, visibility, invitation settings,
// scheduling) requires the acting user to be in Instructors.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Instructors []primitive.ObjectID `bson:"instructors" json:"instructors"`
	Visibility  string             `bson:"visibility" json:"visibility"`

	// Scheduling: RevealsAt gates when content becomes visible to learners,
	// FreezeAt gates when submissions stop being accepted.
	RevealsAt *time.Time `bson:"reveals_at,omitempty" json:"reveals_at,omitempty"`
	FreezeAt  *time.Time `bson:"freeze_at,omitempty" json:"freeze_at,omitempty"`

	Levels []Level `bson:"levels,omitempty" json:"levels,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Level groups exercises within a course.
type Level struct {
	Title     string     `bson:"title" json:"title"`
	Exercises []Exercise `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

// Exercise is a single task inside a level. Exercises carry their own ids so
// submissions, comments, and insight counters can reference them directly.
type Exercise struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Body  string             `bson:"body,omitempty" json:"body,omitempty"`
}
