package insights_test

import (
	"sync"
	"testing"
	"time"

	insightstore "github.com/courseloop/courseloop/internal/app/store/insights"
	"github.com/courseloop/courseloop/internal/domain/models"
	"github.com/courseloop/courseloop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The first events for a fresh scope race each other: concurrent upserts can
// both miss the filter and collide on the unique scope index. None may be
// lost or surface an error.
func TestStore_Record_ConcurrentFirstEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	courseID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	now := time.Now()

	const events = 8
	var wg sync.WaitGroup
	errs := make([]error, events)
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Record(ctx, models.MetricRuns, courseID, exerciseID, now)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		t.Fatalf("GetCourse failed: %v", err)
	}
	if course.Totals[models.MetricRuns] != events {
		t.Errorf("course total runs: got %d, want %d", course.Totals[models.MetricRuns], events)
	}
	ex, err := store.GetExercise(ctx, courseID, exerciseID)
	if err != nil {
		t.Fatalf("GetExercise failed: %v", err)
	}
	if ex.Totals[models.MetricRuns] != events {
		t.Errorf("exercise total runs: got %d, want %d", ex.Totals[models.MetricRuns], events)
	}
}

func TestStore_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	courseID := primitive.NewObjectID()
	e1 := primitive.NewObjectID()
	e2 := primitive.NewObjectID()
	now := time.Now()

	// Two runs on e1, one on e2.
	for _, ex := range []primitive.ObjectID{e1, e1, e2} {
		if err := store.Record(ctx, models.MetricRuns, courseID, ex, now); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// Course scope accumulated all three events.
	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		t.Fatalf("GetCourse failed: %v", err)
	}
	if course.Totals[models.MetricRuns] != 3 {
		t.Errorf("course total runs: got %d, want 3", course.Totals[models.MetricRuns])
	}

	day := now.UTC().Format("2006-01-02")
	if course.Daily[day][models.MetricRuns] != 3 {
		t.Errorf("course daily runs: got %d, want 3", course.Daily[day][models.MetricRuns])
	}

	// Exercise scopes counted per exercise.
	ex1, err := store.GetExercise(ctx, courseID, e1)
	if err != nil {
		t.Fatalf("GetExercise(e1) failed: %v", err)
	}
	if ex1.Totals[models.MetricRuns] != 2 {
		t.Errorf("e1 total runs: got %d, want 2", ex1.Totals[models.MetricRuns])
	}

	ex2, err := store.GetExercise(ctx, courseID, e2)
	if err != nil {
		t.Fatalf("GetExercise(e2) failed: %v", err)
	}
	if ex2.Totals[models.MetricRuns] != 1 {
		t.Errorf("e2 total runs: got %d, want 1", ex2.Totals[models.MetricRuns])
	}
}

func TestStore_Record_MetricsIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	courseID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	now := time.Now()

	if err := store.Record(ctx, models.MetricRuns, courseID, exerciseID, now); err != nil {
		t.Fatalf("Record runs failed: %v", err)
	}
	if err := store.Record(ctx, models.MetricCompletions, courseID, exerciseID, now); err != nil {
		t.Fatalf("Record completions failed: %v", err)
	}

	ex, err := store.GetExercise(ctx, courseID, exerciseID)
	if err != nil {
		t.Fatalf("GetExercise failed: %v", err)
	}
	if ex.Totals[models.MetricRuns] != 1 || ex.Totals[models.MetricCompletions] != 1 {
		t.Errorf("totals: got %v, want runs=1 completions=1", ex.Totals)
	}
}

func TestStore_Record_DailyBuckets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	courseID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	day1 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, models.MetricRuns, courseID, exerciseID, day1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, models.MetricRuns, courseID, exerciseID, day2); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	course, err := store.GetCourse(ctx, courseID)
	if err != nil {
		t.Fatalf("GetCourse failed: %v", err)
	}
	if course.Daily["2026-08-28"][models.MetricRuns] != 1 {
		t.Errorf("day1 runs: got %d, want 1", course.Daily["2026-08-28"][models.MetricRuns])
	}
	if course.Daily["2026-08-29"][models.MetricRuns] != 1 {
		t.Errorf("day2 runs: got %d, want 1", course.Daily["2026-08-29"][models.MetricRuns])
	}
	if course.Totals[models.MetricRuns] != 2 {
		t.Errorf("total runs: got %d, want 2", course.Totals[models.MetricRuns])
	}
}

func TestStore_ListExercises(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	courseID := primitive.NewObjectID()
	e1 := primitive.NewObjectID()
	e2 := primitive.NewObjectID()
	now := time.Now()

	for _, ex := range []primitive.ObjectID{e1, e2} {
		if err := store.Record(ctx, models.MetricRuns, courseID, ex, now); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// The per-exercise list excludes the course-scope aggregate.
	list, err := store.ListExercises(ctx, courseID)
	if err != nil {
		t.Fatalf("ListExercises failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("exercise aggregates: got %d, want 2", len(list))
	}
	for _, doc := range list {
		if doc.ExerciseID == nil {
			t.Errorf("exercise aggregate missing exercise id: %+v", doc)
		}
	}
}

func TestStore_GetCourse_NoEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := insightstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetCourse(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
