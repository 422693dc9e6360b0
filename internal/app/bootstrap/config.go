// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CourseLoop.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COURSELOOP_MONGO_URI, COURSELOOP_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "courseloop", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "courseloop-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Mail configuration
	{Name: "sendgrid_key", Default: "", Desc: "SendGrid API key (empty disables mail delivery)"},
	{Name: "mail_from", Default: "noreply@courseloop.dev", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CourseLoop", Desc: "From display name"},

	// Site identity for email templates and links
	{Name: "site_name", Default: "CourseLoop", Desc: "Site name used in email templates"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Background workers
	{Name: "drain_interval", Default: "30s", Desc: "Profile propagation drain interval (e.g., 30s, 1m)"},
	{Name: "outbox_interval", Default: "1m", Desc: "Mail outbox delivery interval (e.g., 1m, 5m)"},
	{Name: "run_drain_worker", Default: true, Desc: "Run the propagation drain worker in this process"},
	{Name: "run_outbox_worker", Default: true, Desc: "Run the mail outbox worker in this process"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COURSELOOP_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COURSELOOP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		SendGridKey:  appValues.String("sendgrid_key"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		DrainInterval:  appValues.Duration("drain_interval", 30*time.Second),
		OutboxInterval: appValues.Duration("outbox_interval", time.Minute),

		RunDrainWorker:  appValues.Bool("run_drain_worker"),
		RunOutboxWorker: appValues.Bool("run_outbox_worker"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CourseLoop validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.DrainInterval <= 0 {
		return fmt.Errorf("drain_interval must be positive, got %s", appCfg.DrainInterval)
	}
	if appCfg.OutboxInterval <= 0 {
		return fmt.Errorf("outbox_interval must be positive, got %s", appCfg.OutboxInterval)
	}

	if appCfg.RunOutboxWorker && appCfg.SendGridKey == "" {
		logger.Warn("sendgrid_key is empty; the mail outbox worker will not start and invitation emails stay queued")
	}

	return nil
}
