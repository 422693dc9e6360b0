// Package progress manages per-course progress records, one per
// (course, user) pair. Each record carries a denormalized copy of the
// author's profile fields maintained by the propagation engine.
package progress

import (
	"context"
	"time"

	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("course_progress")}
}

// EnsureIndexes creates the indexes the drain and the course views rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "author.user_id", Value: 1}},
			Options: options.Index().SetName("idx_progress_course_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "author.user_id", Value: 1}},
			Options: options.Index().SetName("idx_progress_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Ensure creates the progress record for a (course, user) pair if it does
// not exist yet. Called when a user joins a course.
func (s *Store) Ensure(ctx context.Context, courseID primitive.ObjectID, author models.AuthorInfo) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"course_id": courseID, "author.user_id": author.UserID},
		bson.M{
			"$setOnInsert": bson.M{
				"author":     author,
				"score":      int64(0),
				"created_at": now,
				"updated_at": now,
			},
		}, options.Update().SetUpsert(true))
	return err
}

// GetForUser loads one user's progress in one course.
func (s *Store) GetForUser(ctx context.Context, courseID, userID primitive.ObjectID) (*models.Progress, error) {
	var p models.Progress
	err := s.c.FindOne(ctx, bson.M{"course_id": courseID, "author.user_id": userID}).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkSolved appends an exercise to the solved list and bumps the score.
// Re-solving an exercise does not add it twice or change the score.
func (s *Store) MarkSolved(ctx context.Context, courseID, userID, exerciseID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"course_id":      courseID,
			"author.user_id": userID,
			"solved":         bson.M{"$ne": exerciseID},
		},
		bson.M{
			"$push": bson.M{"solved": exerciseID},
			"$inc":  bson.M{"score": 1},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	_ = res // zero matches means already solved; not an error
	return nil
}

// ListByCourse returns all progress records for a course, highest score first.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Progress, error) {
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Progress
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAuthorInfo overwrites the cached profile fields on every progress
// record authored by the user. Only the fields present in the patch are written.
// Returns the number of documents matched.
func (s *Store) UpdateAuthorInfo(ctx context.Context, userID primitive.ObjectID, patch models.ProfilePatch) (int64, error) {
	if patch.IsZero() {
		return 0, nil
	}

	set := bson.M{"updated_at": time.Now()}
	if patch.DisplayName != nil {
		set["author.display_name"] = *patch.DisplayName
	}
	if patch.ImageURL != nil {
		set["author.image_url"] = *patch.ImageURL
	}

	res, err := s.c.UpdateMany(ctx, bson.M{"author.user_id": userID}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
