package propagate_test

import (
	"testing"

	commentstore "github.com/courseloop/courseloop/internal/app/store/comments"
	"github.com/courseloop/courseloop/internal/app/store/pendingupdates"
	progressstore "github.com/courseloop/courseloop/internal/app/store/progress"
	submissionstore "github.com/courseloop/courseloop/internal/app/store/submissions"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/propagate"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/courseloop/courseloop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func TestDrain_DisplayNameChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	instructor := fixtures.CreateUser(ctx, "Teach", "teach@example.com")
	course := fixtures.CreateCourse(ctx, "Intro to Go", 2, instructor.ID)
	exercise := course.Levels[0].Exercises[0]

	author := testutil.Author(user)
	fixtures.CreateProgress(ctx, course.ID, author)
	fixtures.CreateComment(ctx, course.ID, exercise.ID, author, "first post")
	fixtures.CreateSubmission(ctx, course.ID, exercise.ID, author, "package main")

	pending := pendingupdates.New(db)
	err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{
		DisplayName: testutil.StrPtr("Bob"),
	})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: got %d, want 1", applied)
	}

	// Every denormalized copy carries the new name.
	p, err := progressstore.New(db).GetForUser(ctx, course.ID, user.ID)
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if p.Author.DisplayName != "Bob" {
		t.Errorf("progress author name: got %q, want %q", p.Author.DisplayName, "Bob")
	}

	comments, err := commentstore.New(db).ListByExercise(ctx, exercise.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Author.DisplayName != "Bob" {
		t.Errorf("comment author not updated: %+v", comments)
	}

	subs, err := submissionstore.New(db).ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(subs) != 1 || subs[0].Author.DisplayName != "Bob" {
		t.Errorf("submission author not updated: %+v", subs)
	}

	// The canonical document was updated through the same drain.
	u, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.DisplayName != "Bob" {
		t.Errorf("canonical display name: got %q, want %q", u.DisplayName, "Bob")
	}

	// The record was retired.
	if _, err := pending.Get(ctx, user.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected pending record to be deleted, got err=%v", err)
	}
}

func TestDrain_ImageOnlyChangeLeavesNamesUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	instructor := fixtures.CreateUser(ctx, "Teach", "teach@example.com")
	course := fixtures.CreateCourse(ctx, "Intro to Go", 1, instructor.ID)
	exercise := course.Levels[0].Exercises[0]

	author := testutil.Author(user)
	fixtures.CreateProgress(ctx, course.ID, author)
	fixtures.CreateComment(ctx, course.ID, exercise.ID, author, "hello")

	pending := pendingupdates.New(db)
	err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{
		ImageURL: testutil.StrPtr("https://cdn.example.com/alice.png"),
	})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if _, err := engine.DrainPendingUpdates(ctx); err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}

	// The image changed everywhere; display names are byte-identical.
	p, err := progressstore.New(db).GetForUser(ctx, course.ID, user.ID)
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if p.Author.ImageURL != "https://cdn.example.com/alice.png" {
		t.Errorf("progress image: got %q", p.Author.ImageURL)
	}
	if p.Author.DisplayName != "Alice" {
		t.Errorf("progress display name changed: got %q, want %q", p.Author.DisplayName, "Alice")
	}

	comments, err := commentstore.New(db).ListByExercise(ctx, exercise.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if comments[0].Author.DisplayName != "Alice" {
		t.Errorf("comment display name changed: got %q", comments[0].Author.DisplayName)
	}

	u, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.DisplayName != "Alice" || u.ImageURL != "https://cdn.example.com/alice.png" {
		t.Errorf("canonical user: got name=%q image=%q", u.DisplayName, u.ImageURL)
	}
}

func TestDrain_EnqueueMergesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	// Two edits before the drain runs merge into one record.
	pending := pendingupdates.New(db)
	if err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{DisplayName: testutil.StrPtr("Bob")}); err != nil {
		t.Fatalf("first Enqueue failed: %v", err)
	}
	if err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{ImageURL: testutil.StrPtr("https://img.example.com/b.png")}); err != nil {
		t.Fatalf("second Enqueue failed: %v", err)
	}

	rec, err := pending.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.DisplayName == nil || *rec.DisplayName != "Bob" {
		t.Errorf("merged record lost display name: %+v", rec)
	}
	if rec.ImageURL == nil || *rec.ImageURL != "https://img.example.com/b.png" {
		t.Errorf("merged record lost image url: %+v", rec)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: got %d, want 1", applied)
	}

	u, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.DisplayName != "Bob" || u.ImageURL != "https://img.example.com/b.png" {
		t.Errorf("canonical user: got name=%q image=%q", u.DisplayName, u.ImageURL)
	}
}

func TestDrain_SecondRunIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	pending := pendingupdates.New(db)
	if err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{DisplayName: testutil.StrPtr("Bob")}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if _, err := engine.DrainPendingUpdates(ctx); err != nil {
		t.Fatalf("first drain failed: %v", err)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("second drain failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("second drain applied %d records, want 0", applied)
	}
}

func TestDrain_EmptyRecordIsRetired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	pending := pendingupdates.New(db)
	if err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: got %d, want 1", applied)
	}

	if _, err := pending.Get(ctx, user.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected empty record to be retired, got err=%v", err)
	}
}

func TestDrain_FailingRecordDoesNotBlockOthers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	carol := fixtures.CreateUser(ctx, "Taken", "carol@example.com")
	instructor := fixtures.CreateUser(ctx, "Teach", "teach@example.com")
	course := fixtures.CreateCourse(ctx, "Intro to Go", 1, instructor.ID)
	exercise := course.Levels[0].Exercises[0]

	fixtures.CreateComment(ctx, course.ID, exercise.ID, testutil.Author(alice), "by alice")
	fixtures.CreateComment(ctx, course.ID, exercise.ID, testutil.Author(bob), "by bob")
	fixtures.CreateComment(ctx, course.ID, exercise.ID, testutil.Author(carol), "by carol")

	// Make Alice's fan-out fail mid-record: her new name collides with a
	// unique index added just for this test, so the comment write errors
	// after the progress write already ran.
	comments := db.Collection("forum_comments")
	_, err := comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "author.display_name", Value: 1}},
		Options: options.Index().SetName("uniq_comment_author_name").SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	pending := pendingupdates.New(db)
	if err := pending.Enqueue(ctx, alice.ID, models.ProfilePatch{DisplayName: testutil.StrPtr("Taken")}); err != nil {
		t.Fatalf("enqueue alice: %v", err)
	}
	if err := pending.Enqueue(ctx, bob.ID, models.ProfilePatch{DisplayName: testutil.StrPtr("Bobby")}); err != nil {
		t.Fatalf("enqueue bob: %v", err)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: got %d, want 1 (only bob)", applied)
	}

	// Bob went through fully.
	u, err := userstore.New(db).GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("load bob: %v", err)
	}
	if u.DisplayName != "Bobby" {
		t.Errorf("bob canonical name: got %q, want %q", u.DisplayName, "Bobby")
	}
	if _, err := pending.Get(ctx, bob.ID); err != mongo.ErrNoDocuments {
		t.Errorf("bob's record not retired: err=%v", err)
	}

	// Alice's record stayed queued and her canonical document is untouched.
	if _, err := pending.Get(ctx, alice.ID); err != nil {
		t.Errorf("alice's record should still be queued: err=%v", err)
	}
	u, err = userstore.New(db).GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if u.DisplayName != "Alice" {
		t.Errorf("alice canonical name changed despite failed fan-out: %q", u.DisplayName)
	}

	// Once the conflict is gone the next cycle applies her record.
	if _, err := comments.Indexes().DropOne(ctx, "uniq_comment_author_name"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	applied, err = engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("retry drain failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("retry applied: got %d, want 1", applied)
	}
	u, err = userstore.New(db).GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("load alice after retry: %v", err)
	}
	if u.DisplayName != "Taken" {
		t.Errorf("alice canonical name after retry: got %q, want %q", u.DisplayName, "Taken")
	}
}

func TestDrain_UserWithNoContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	engine := propagate.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// No progress, comments, or submissions exist for this user. The drain
	// still updates the canonical document and retires the record.
	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	pending := pendingupdates.New(db)
	if err := pending.Enqueue(ctx, user.ID, models.ProfilePatch{DisplayName: testutil.StrPtr("Bob")}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	applied, err := engine.DrainPendingUpdates(ctx)
	if err != nil {
		t.Fatalf("DrainPendingUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: got %d, want 1", applied)
	}

	u, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.DisplayName != "Bob" {
		t.Errorf("canonical display name: got %q, want %q", u.DisplayName, "Bob")
	}
}
