// Package comments manages the exercise forum. Bodies are user-generated
// content and are sanitized on write; the embedded author info is a
// denormalized copy maintained by the propagation engine.
package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bodyPolicy strips everything but basic formatting from comment bodies.
var bodyPolicy = bluemonday.UGCPolicy()

// ErrEmptyBody is returned when a comment body is empty after sanitizing.
var ErrEmptyBody = errors.New("comment body is empty")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("forum_comments")}
}

// EnsureIndexes creates the indexes the drain and the forum views rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exercise_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_comments_exercise"),
		},
		{
			Keys:    bson.D{{Key: "author.user_id", Value: 1}},
			Options: options.Index().SetName("idx_comments_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new comment with a sanitized body.
func (s *Store) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = primitive.NewObjectID()
	c.Body = SanitizeBody(c.Body)
	if c.Body == "" {
		return models.Comment{}, ErrEmptyBody
	}
	c.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListByExercise returns a thread's comments, oldest first.
func (s *Store) ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := s.c.Find(ctx, bson.M{"exercise_id": exerciseID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAuthorInfo overwrites the cached profile fields on every comment
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

// SanitizeBody strips unsafe HTML and trims the result.
func SanitizeBody(body string) string {
	return strings.TrimSpace(bodyPolicy.Sanitize(body))
}
