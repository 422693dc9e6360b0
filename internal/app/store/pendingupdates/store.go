// Package pendingupdates manages the durable queue of unapplied profile
// changes. The collection is the queue: one document per user, keyed by the
// user id, enumerated and retired by the propagation engine. There is no
// pop-then-process abstraction; the drain is re-entrant over whatever
// records currently exist.
package pendingupdates

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
	return &Store{c: db.Collection("pending_info_updates")}
}

// EnsureIndexes creates the created_at index the drain's oldest-first
// enumeration relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_pending_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Enqueue merges the patch into the user's pending record, creating it if
// absent. Only fields present in the patch are written, so an imageUrl-only
// change never clobbers a queued displayName change for the same user.
func (s *Store) Enqueue(ctx context.Context, userID primitive.ObjectID, patch models.ProfilePatch) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	if patch.DisplayName != nil {
		set["display_name"] = *patch.DisplayName
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}, options.Update().SetUpsert(true))
	return err
}

// Get loads the pending record for a user. Returns mongo.ErrNoDocuments if
// nothing is queued.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (*models.PendingInfoUpdate, error) {
	var u models.PendingInfoUpdate
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every pending record, oldest first.
func (s *Store) List(ctx context.Context) ([]models.PendingInfoUpdate, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.PendingInfoUpdate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete retires a fully applied record. Deleting an already-deleted record
// is not an error, which keeps concurrent drains safe.
func (s *Store) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
