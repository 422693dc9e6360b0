// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	commentstore "github.com/courseloop/courseloop/internal/app/store/comments"
	courseprivatestore "github.com/courseloop/courseloop/internal/app/store/courseprivate"
	coursestore "github.com/courseloop/courseloop/internal/app/store/courses"
	insightstore "github.com/courseloop/courseloop/internal/app/store/insights"
	mailoutboxstore "github.com/courseloop/courseloop/internal/app/store/mailoutbox"
	"github.com/courseloop/courseloop/internal/app/store/pendingupdates"
	progressstore "github.com/courseloop/courseloop/internal/app/store/progress"
	submissionstore "github.com/courseloop/courseloop/internal/app/store/submissions"
	userstore "github.com/courseloop/courseloop/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store relies on. Index creation is
// idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"courses", coursestore.New(db).EnsureIndexes},
		{"course_private_fields", courseprivatestore.New(db).EnsureIndexes},
		{"course_progress", progressstore.New(db).EnsureIndexes},
		{"forum_comments", commentstore.New(db).EnsureIndexes},
		{"submission_results", submissionstore.New(db).EnsureIndexes},
		{"pending_info_updates", pendingupdates.New(db).EnsureIndexes},
		{"mail_outbox", mailoutboxstore.New(db).EnsureIndexes},
		{"insights", insightstore.New(db).EnsureIndexes},
	}

	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", e.name, err)
		}
	}

	logger.Info("database schema ensured", zap.Int("collections", len(ensure)))
	return nil
}
