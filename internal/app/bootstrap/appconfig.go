// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging
// level, timeouts). AppConfig is everything specific to CourseLoop: database
// connection details, the session cookie, the mail provider, and the
// background worker intervals.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: courseloop-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Mail configuration. Invitation emails are delivered through SendGrid;
	// an empty key disables the outbox worker so local development never
	// needs provider credentials.
	SendGridKey  string // SendGrid API key
	MailFrom     string // From email address (e.g., noreply@courseloop.dev)
	MailFromName string // From display name (e.g., CourseLoop)

	// Site identity for email templates and links.
	SiteName string // e.g., "CourseLoop"
	BaseURL  string // e.g., "https://courseloop.dev" or "http://localhost:3000"

	// Background worker intervals.
	DrainInterval  time.Duration // how often the propagation drain runs
	OutboxInterval time.Duration // how often the mail outbox is delivered

	// Worker toggles, for deployments that run workers in a separate process.
	RunDrainWorker  bool
	RunOutboxWorker bool
}
