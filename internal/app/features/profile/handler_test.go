package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courseloop/courseloop/internal/app/features/profile"
	"github.com/courseloop/courseloop/internal/app/store/pendingupdates"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return profile.NewHandler(db, zap.NewNop()), db
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeProfile_Authenticated(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	req := httptest.NewRequest("GET", "/profile", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: user.ID.Hex(), Name: user.DisplayName})
	rec := httptest.NewRecorder()

	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.DisplayName != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("profile: got %+v", got)
	}
}

func TestHandleUpdateProfile_QueuesInsteadOfWriting(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	body := strings.NewReader(`{"display_name":"Bob"}`)
	req := httptest.NewRequest("PUT", "/profile", body)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: user.ID.Hex(), Name: user.DisplayName})
	rec := httptest.NewRecorder()

	handler.HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	// The canonical document is untouched until the drain runs.
	u, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.DisplayName != "Alice" {
		t.Errorf("canonical name written directly: got %q, want %q", u.DisplayName, "Alice")
	}

	// The change is queued.
	rec2, err := pendingupdates.New(db).Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("load pending record: %v", err)
	}
	if rec2.DisplayName == nil || *rec2.DisplayName != "Bob" {
		t.Errorf("pending record: got %+v, want display_name=Bob", rec2)
	}
	if rec2.ImageURL != nil {
		t.Errorf("pending record gained an image url: %+v", rec2)
	}
}

func TestHandleUpdateProfile_EmptyPatchRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	req := httptest.NewRequest("PUT", "/profile", strings.NewReader(`{}`))
	req = auth.WithTestUser(req, &auth.SessionUser{ID: user.ID.Hex(), Name: user.DisplayName})
	rec := httptest.NewRecorder()

	handler.HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	if _, err := pendingupdates.New(db).Get(ctx, user.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected no pending record, got err=%v", err)
	}
}
