package comments_test

import (
	"strings"
	"testing"
	"time"

	commentstore "github.com/courseloop/courseloop/internal/app/store/comments"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/courseloop/courseloop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSanitizeBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"script stripped", `hi <script>alert("x")</script>there`, "hi there"},
		{"basic formatting kept", "<b>bold</b> and <em>em</em>", "<b>bold</b> and <em>em</em>"},
		{"trimmed", "  padded  ", "padded"},
		{"only markup", "<script>x</script>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commentstore.SanitizeBody(tt.in); got != tt.want {
				t.Errorf("SanitizeBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	exerciseID := primitive.NewObjectID()

	created, err := store.Create(ctx, models.Comment{
		CourseID:   primitive.NewObjectID(),
		ExerciseID: exerciseID,
		Author:     testutil.Author(user),
		Body:       `nice one <script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if strings.Contains(created.Body, "<script>") {
		t.Errorf("body not sanitized: %q", created.Body)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_EmptyAfterSanitize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Comment{
		CourseID:   primitive.NewObjectID(),
		ExerciseID: primitive.NewObjectID(),
		Body:       "<script>only markup</script>",
	})
	if err != commentstore.ErrEmptyBody {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
}

func TestStore_ListByExercise(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	courseID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	otherExercise := primitive.NewObjectID()

	for _, body := range []string{"first", "second"} {
		if _, err := store.Create(ctx, models.Comment{
			CourseID:   courseID,
			ExerciseID: exerciseID,
			Author:     testutil.Author(user),
			Body:       body,
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		// BSON datetimes have millisecond precision; keep created_at distinct.
		time.Sleep(2 * time.Millisecond)
	}
	if _, err := store.Create(ctx, models.Comment{
		CourseID:   courseID,
		ExerciseID: otherExercise,
		Author:     testutil.Author(user),
		Body:       "elsewhere",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.ListByExercise(ctx, exerciseID)
	if err != nil {
		t.Fatalf("ListByExercise failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("thread size: got %d, want 2", len(list))
	}
	if list[0].Body != "first" || list[1].Body != "second" {
		t.Errorf("thread order: got [%s, %s], want oldest first", list[0].Body, list[1].Body)
	}
}
