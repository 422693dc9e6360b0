package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given display name and email.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		DisplayName:   displayName,
		DisplayNameCI: text.Fold(displayName),
		Email:         email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateCourse creates a test course with one level of the given number of
// exercises, taught by the given instructors.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, exercises int, instructors ...primitive.ObjectID) models.Course {
	f.t.Helper()

	exs := make([]models.Exercise, 0, exercises)
	for i := 0; i < exercises; i++ {
		exs = append(exs, models.Exercise{
			ID:    primitive.NewObjectID(),
			Title: "Exercise",
		})
	}

	now := time.Now().UTC()
	course := models.Course{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Instructors: instructors,
		Visibility:  models.VisibilityPublic,
		Levels:      []models.Level{{Title: "Level 1", Exercises: exs}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("courses").InsertOne(ctx, course)
	if err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}

	return course
}

// CreatePrivateFields creates the private-fields document for a course.
func (f *Fixtures) CreatePrivateFields(ctx context.Context, courseID primitive.ObjectID, invited, sent []string) models.CoursePrivateFields {
	f.t.Helper()

	priv := models.CoursePrivateFields{
		CourseID:      courseID,
		InvitedEmails: invited,
		SentEmails:    sent,
		MailSubject:   "You are invited",
		MailText:      "Come join the course.",
		UpdatedAt:     time.Now().UTC(),
	}

	_, err := f.db.Collection("course_private_fields").InsertOne(ctx, priv)
	if err != nil {
		f.t.Fatalf("failed to create test private fields: %v", err)
	}

	return priv
}

// CreateProgress creates a progress record for a (course, user) pair.
func (f *Fixtures) CreateProgress(ctx context.Context, courseID primitive.ObjectID, author models.AuthorInfo) models.Progress {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Progress{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("course_progress").InsertOne(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test progress: %v", err)
	}

	return p
}

// CreateComment creates a forum comment.
func (f *Fixtures) CreateComment(ctx context.Context, courseID, exerciseID primitive.ObjectID, author models.AuthorInfo, body string) models.Comment {
	f.t.Helper()

	c := models.Comment{
		ID:         primitive.NewObjectID(),
		CourseID:   courseID,
		ExerciseID: exerciseID,
		Author:     author,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("forum_comments").InsertOne(ctx, c)
	if err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}

	return c
}

// CreateSubmission creates a submission.
func (f *Fixtures) CreateSubmission(ctx context.Context, courseID, exerciseID primitive.ObjectID, author models.AuthorInfo, code string) models.Submission {
	f.t.Helper()

	s := models.Submission{
		ID:         primitive.NewObjectID(),
		CourseID:   courseID,
		ExerciseID: exerciseID,
		Author:     author,
		Code:       code,
		Language:   "go",
		Status:     models.SubmissionPending,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("submission_results").InsertOne(ctx, s)
	if err != nil {
		f.t.Fatalf("failed to create test submission: %v", err)
	}

	return s
}

// Author builds an AuthorInfo snapshot from a user.
func Author(u models.User) models.AuthorInfo {
	return models.AuthorInfo{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		ImageURL:    u.ImageURL,
	}
}

// StrPtr returns a pointer to s, for building partial profile patches.
func StrPtr(s string) *string {
	return &s
}
