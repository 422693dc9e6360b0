// Package courseprivate manages the per-course private-fields document:
// the full desired invite list, the subset already emailed, and the mail
// subject/text used for invitations. The document id is the course id.
package courseprivate

import (
	"context"
	"time"

	"github.com/courseloop/courseloop/internal/app/system/normalize"
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
	return &Store{c: db.Collection("course_private_fields")}
}

// EnsureIndexes is a no-op kept for schema-setup symmetry: the collection is
// keyed by course id, which the _id index already covers.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return nil
}

// Get loads the private fields for a course. Returns mongo.ErrNoDocuments
// if none exist yet.
func (s *Store) Get(ctx context.Context, courseID primitive.ObjectID) (*models.CoursePrivateFields, error) {
	var p models.CoursePrivateFields
	if err := s.c.FindOne(ctx, bson.M{"_id": courseID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetMailContent upserts the invitation mail subject and text.
func (s *Store) SetMailContent(ctx context.Context, courseID primitive.ObjectID, subject, textBody string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$set": bson.M{
			"mail_subject": subject,
			"mail_text":    textBody,
			"updated_at":   time.Now(),
		},
	}, options.Update().SetUpsert(true))
	return err
}

// AddInvitedEmails unions normalized addresses into the invite list. Adding
// an address that is already invited is a no-op.
func (s *Store) AddInvitedEmails(ctx context.Context, courseID primitive.ObjectID, emails ...string) error {
	add := make([]string, 0, len(emails))
	for _, e := range emails {
		if n := normalize.Email(e); n != "" {
			add = append(add, n)
		}
	}
	if len(add) == 0 {
		return nil
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$addToSet": bson.M{"invited_emails": bson.M{"$each": add}},
		"$set":      bson.M{"updated_at": time.Now()},
	}, options.Update().SetUpsert(true))
	return err
}

// MarkSent atomically unions addresses into sent_emails. The $addToSet keeps
// the operation idempotent and safe against a concurrent send recording the
// same address: no read-modify-write of the list ever happens.
func (s *Store) MarkSent(ctx context.Context, courseID primitive.ObjectID, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$addToSet": bson.M{"sent_emails": bson.M{"$each": emails}},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}
