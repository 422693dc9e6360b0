package coursestore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloop/courseloop/internal/app/system/normalize"
	"github.com/courseloop/courseloop/internal/domain/models"
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
	return &Store{c: db.Collection("courses")}
}

var (
	errTitleNeeded      = errors.New("course title is required")
	errInstructorNeeded = errors.New("course must have at least one instructor")
	errBadVisibility    = errors.New(`visibility must be "public"|"private"|"hidden"`)
)

// EnsureIndexes creates the indexes the catalog and instructor views rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "instructors", Value: 1}},
			Options: options.Index().SetName("idx_courses_instructors"),
		},
		{
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "reveals_at", Value: 1}},
			Options: options.Index().SetName("idx_courses_visibility"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("idx_courses_title_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a course by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new course after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.ID = primitive.NewObjectID()
	c.Title = normalize.Name(c.Title)
	c.TitleCI = text.Fold(c.Title)
	if c.Title == "" {
		return models.Course{}, errTitleNeeded
	}
	if len(c.Instructors) == 0 {
		return models.Course{}, errInstructorNeeded
	}
	c.Visibility = normalize.Visibility(c.Visibility)
	if c.Visibility == "" {
		c.Visibility = models.VisibilityHidden
	}
	if !validVisibility(c.Visibility) {
		return models.Course{}, errBadVisibility
	}

	for li := range c.Levels {
		for ei := range c.Levels[li].Exercises {
			if c.Levels[li].Exercises[ei].ID.IsZero() {
				c.Levels[li].Exercises[ei].ID = primitive.NewObjectID()
			}
		}
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// Update holds the privileged course fields an instructor may change.
// Nil pointer fields are left unchanged.
type Update struct {
	Title       *string
	Description *string
	Visibility  *string
	Instructors []primitive.ObjectID
	RevealsAt   *time.Time
	FreezeAt    *time.Time
	Levels      []models.Level
}

// Apply writes the update. Callers must have passed the instructor gate;
// this method does not re-check membership.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		if title == "" {
			return errTitleNeeded
		}
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Visibility != nil {
		v := normalize.Visibility(*upd.Visibility)
		if !validVisibility(v) {
			return errBadVisibility
		}
		set["visibility"] = v
	}
	if upd.Instructors != nil {
		if len(upd.Instructors) == 0 {
			return errInstructorNeeded
		}
		set["instructors"] = upd.Instructors
	}
	if upd.RevealsAt != nil {
		set["reveals_at"] = *upd.RevealsAt
	}
	if upd.FreezeAt != nil {
		set["freeze_at"] = *upd.FreezeAt
	}
	if upd.Levels != nil {
		levels := upd.Levels
		for li := range levels {
			for ei := range levels[li].Exercises {
				if levels[li].Exercises[ei].ID.IsZero() {
					levels[li].Exercises[ei].ID = primitive.NewObjectID()
				}
			}
		}
		set["levels"] = levels
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// HasInstructor reports whether userID is in the course's instructor list.
// Returns mongo.ErrNoDocuments if the course does not exist.
func (s *Store) HasInstructor(ctx context.Context, courseID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": courseID, "instructors": userID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		// Distinguish "course missing" from "not a member".
		existsErr := s.c.FindOne(ctx, bson.M{"_id": courseID},
			options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if existsErr == nil {
			return false, nil
		}
		return false, existsErr
	}
	return false, err
}

// ListByInstructor returns every course the user teaches, newest first.
func (s *Store) ListByInstructor(ctx context.Context, userID primitive.ObjectID) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, bson.M{"instructors": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListVisible returns courses learners may browse: public courses plus
// revealed private ones.
func (s *Store) ListVisible(ctx context.Context, now time.Time) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"visibility": models.VisibilityPublic},
		bson.M{
			"visibility": models.VisibilityPrivate,
			"reveals_at": bson.M{"$lte": now},
		},
	}}, options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func validVisibility(v string) bool {
	switch v {
	case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityHidden:
		return true
	}
	return false
}
