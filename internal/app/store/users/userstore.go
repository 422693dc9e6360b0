package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloop/courseloop/internal/app/system/normalize"
	"github.com/courseloop/courseloop/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errEmailNeeded    = errors.New("email is required")
)

// EnsureIndexes creates the unique email index Create relies on to report
// duplicates, plus the folded-name index used for lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "display_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.DisplayName = normalize.Name(u.DisplayName)
	u.DisplayNameCI = text.Fold(u.DisplayName)
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errEmailNeeded
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// AddCourses adds course ids to the user's active course list. Ids already
// present in the active list are not duplicated, and ids present in the
// completed list are skipped entirely so a finished course is never re-added.
func (s *Store) AddCourses(ctx context.Context, userID primitive.ObjectID, courseIDs ...primitive.ObjectID) error {
	if len(courseIDs) == 0 {
		return nil
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	completed := make(map[primitive.ObjectID]struct{}, len(u.Completed))
	for _, id := range u.Completed {
		completed[id] = struct{}{}
	}

	add := make([]primitive.ObjectID, 0, len(courseIDs))
	for _, id := range courseIDs {
		if _, done := completed[id]; !done {
			add = append(add, id)
		}
	}
	if len(add) == 0 {
		return nil
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"courses": bson.M{"$each": add}},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// CompleteCourse moves a course id from the active list to the completed list.
func (s *Store) CompleteCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull":     bson.M{"courses": courseID},
		"$addToSet": bson.M{"completed": courseID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// ApplyProfileInfo writes the fields present in the patch onto the canonical
// user document. Fields not carried by the patch are left untouched. This is
// the only write path for profile fields; it is called by the propagation
// engine, never by handlers.
func (s *Store) ApplyProfileInfo(ctx context.Context, userID primitive.ObjectID, patch models.ProfilePatch) error {
	if patch.IsZero() {
		return nil
	}

	set := bson.M{"updated_at": time.Now()}
	if patch.DisplayName != nil {
		name := normalize.Name(*patch.DisplayName)
		set["display_name"] = name
		set["display_name_ci"] = text.Fold(name)
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	return err
}
