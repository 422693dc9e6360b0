// Package submissions manages code-run results. Each submission embeds a
// denormalized copy of the author's profile fields maintained by the
// propagation engine.
package submissions

import (
	"context"
	"errors"
	"time"

	"github.com/courseloop/courseloop/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrEmptyCode is returned when a submission carries no code.
var ErrEmptyCode = errors.New("submission code is empty")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submission_results")}
}

// EnsureIndexes creates the indexes the drain and the result views rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exercise_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_submissions_exercise"),
		},
		{
			Keys:    bson.D{{Key: "author.user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_submissions_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new submission.
func (s *Store) Create(ctx context.Context, sub models.Submission) (models.Submission, error) {
	if sub.Code == "" {
		return models.Submission{}, ErrEmptyCode
	}
	sub.ID = primitive.NewObjectID()
	if sub.Status == "" {
		sub.Status = models.SubmissionPending
	}
	sub.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.Submission{}, err
	}
	return sub, nil
}

// GetByID loads one submission.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetResult records the outcome of checking a submission.
func (s *Store) SetResult(ctx context.Context, id primitive.ObjectID, status, output string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "output": output},
	})
	return err
}

// ListByExercise returns an exercise's submissions, newest first.
func (s *Store) ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]models.Submission, error) {
	cur, err := s.c.Find(ctx, bson.M{"exercise_id": exerciseID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns a user's submissions across all courses, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Submission, error) {
	cur, err := s.c.Find(ctx, bson.M{"author.user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAuthorInfo overwrites the cached profile fields on every submission
// authored by the user. Only the fields present in the patch are written.
// Returns the number of documents matched.
func (s *Store) UpdateAuthorInfo(ctx context.Context, userID primitive.ObjectID, patch models.ProfilePatch) (int64, error) {
	if patch.IsZero() {
		return 0, nil
	}

	set := bson.M{}
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
