// Package mailoutbox manages the mail_outbox collection. Producers (the
// invitation gate) insert pending messages; the outbox mail job delivers
// them and records the outcome. Delivery is decoupled from enqueueing so an
// email provider outage never fails the operation that wanted the email.
package mailoutbox

import (
	"context"
	"time"

	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxAttempts is how many delivery failures a message survives before it is
// marked failed and left for operator attention.
const MaxAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mail_outbox")}
}

// EnsureIndexes creates the indexes the mail job relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_outbox_status"),
		},
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetName("idx_outbox_key").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Enqueue inserts a pending message and returns it with id and key assigned.
func (s *Store) Enqueue(ctx context.Context, msg models.OutboxMessage) (models.OutboxMessage, error) {
	msg.ID = primitive.NewObjectID()
	if msg.Key == "" {
		msg.Key = uuid.NewString()
	}
	msg.Status = models.OutboxPending
	msg.Attempts = 0
	msg.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return models.OutboxMessage{}, err
	}
	return msg, nil
}

// ListPending returns up to limit undelivered messages, oldest first.
func (s *Store) ListPending(ctx context.Context, limit int64) ([]models.OutboxMessage, error) {
	cur, err := s.c.Find(ctx, bson.M{"status": models.OutboxPending},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	var out []models.OutboxMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.OutboxSent, "sent_at": now},
	})
	return err
}

// MarkAttemptFailed records a delivery failure. The message stays pending
// until MaxAttempts failures, then flips to failed.
func (s *Store) MarkAttemptFailed(ctx context.Context, id primitive.ObjectID, cause string) error {
	var msg models.OutboxMessage
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_error": cause},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&msg)
	if err != nil {
		return err
	}

	if msg.Attempts >= MaxAttempts {
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set": bson.M{"status": models.OutboxFailed},
		})
	}
	return err
}
