// Package insights maintains usage counters at two scopes per course: the
// course-overall aggregate and one aggregate per (course, exercise). All
// writes are atomic $inc upserts, never read-modify-write, so concurrent
// events accumulate instead of overwriting each other.
package insights

import (
	"context"
	"errors"
	"time"

	"github.com/courseloop/courseloop/internal/app/system/normalize"
	"github.com/courseloop/courseloop/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dayFormat keys the per-day counter buckets.
const dayFormat = "2006-01-02"

var errMetricNeeded = errors.New("metric name is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("insights")}
}

// EnsureIndexes creates the unique scope index the upserts rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "exercise_id", Value: 1}},
			Options: options.Index().SetName("idx_insights_scope").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record increments metric by one at both scopes: the course-overall
// aggregate and the (course, exercise) aggregate, bucketed by at's UTC day.
//
// Callers that need the two increments to be atomic run Record inside
// txn.WithTransaction and pass the transaction's context; Record itself
// issues plain writes against whatever context it is given.
func (s *Store) Record(ctx context.Context, metric string, courseID, exerciseID primitive.ObjectID, at time.Time) error {
	metric = normalize.Metric(metric)
	if metric == "" {
		return errMetricNeeded
	}

	if err := s.bump(ctx, metric, courseID, nil, at); err != nil {
		return err
	}
	return s.bump(ctx, metric, courseID, &exerciseID, at)
}

func (s *Store) bump(ctx context.Context, metric string, courseID primitive.ObjectID, exerciseID *primitive.ObjectID, at time.Time) error {
	day := at.UTC().Format(dayFormat)

	filter := bson.M{"course_id": courseID}
	if exerciseID != nil {
		filter["exercise_id"] = *exerciseID
	} else {
		filter["exercise_id"] = bson.M{"$exists": false}
	}

	update := bson.M{
		"$inc": bson.M{
			"totals." + metric:            int64(1),
			"daily." + day + "." + metric: int64(1),
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && wafflemongo.IsDup(err) {
		// Two first-ever events for a scope can both miss the filter and
		// upsert; the loser hits the unique scope index. The document now
		// exists, so one retry matches it and increments in place.
		_, err = s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	}
	return err
}

// GetCourse loads the course-overall aggregate. Returns mongo.ErrNoDocuments
// if no events were ever recorded for the course.
func (s *Store) GetCourse(ctx context.Context, courseID primitive.ObjectID) (*models.InsightDoc, error) {
	var doc models.InsightDoc
	err := s.c.FindOne(ctx, bson.M{
		"course_id":   courseID,
		"exercise_id": bson.M{"$exists": false},
	}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetExercise loads one (course, exercise) aggregate.
func (s *Store) GetExercise(ctx context.Context, courseID, exerciseID primitive.ObjectID) (*models.InsightDoc, error) {
	var doc models.InsightDoc
	err := s.c.FindOne(ctx, bson.M{
		"course_id":   courseID,
		"exercise_id": exerciseID,
	}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListExercises returns every per-exercise aggregate for a course.
func (s *Store) ListExercises(ctx context.Context, courseID primitive.ObjectID) ([]models.InsightDoc, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"course_id":   courseID,
		"exercise_id": bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	var out []models.InsightDoc
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
