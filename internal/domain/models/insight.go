// internal/domain/models/insight.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Insight metrics.
const (
	MetricRuns        = "runs"
	MetricCompletions = "completions"
)

// InsightDoc is a nested aggregate of event counters for one scope: either a
// whole course (ExerciseID nil) or one (course, exercise) pair. Counters are
// maintained with atomic $inc updates only and never decrement, so a counter
// equals the number of recorded events for its scope since creation.
type InsightDoc struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CourseID   primitive.ObjectID  `bson:"course_id" json:"course_id"`
	ExerciseID *primitive.ObjectID `bson:"exercise_id,omitempty" json:"exercise_id,omitempty"`

	// Totals maps metric name to all-time count; Daily maps "2006-01-02"
	// day keys to per-day metric counts.
	Totals map[string]int64            `bson:"totals,omitempty" json:"totals,omitempty"`
	Daily  map[string]map[string]int64 `bson:"daily,omitempty" json:"daily,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
