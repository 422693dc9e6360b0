// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/courseloop/courseloop/internal/app/features/admin"
	commentsfeature "github.com/courseloop/courseloop/internal/app/features/comments"
	coursesfeature "github.com/courseloop/courseloop/internal/app/features/courses"
	healthfeature "github.com/courseloop/courseloop/internal/app/features/health"
	insightsfeature "github.com/courseloop/courseloop/internal/app/features/insights"
	profilefeature "github.com/courseloop/courseloop/internal/app/features/profile"
	sessionfeature "github.com/courseloop/courseloop/internal/app/features/session"
	submissionsfeature "github.com/courseloop/courseloop/internal/app/features/submissions"
	"github.com/courseloop/courseloop/internal/app/system/auth"
	"github.com/courseloop/courseloop/internal/app/system/invites"
	"github.com/courseloop/courseloop/internal/app/system/propagate"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the session manager, applies
// the session middleware globally, and mounts one subrouter per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	gate := invites.New(db, appCfg.SiteName, appCfg.BaseURL, logger)
	engine := propagate.New(db, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Session issuance
	sessionHandler := sessionfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/session", sessionfeature.Routes(sessionHandler))

	// Profile reads and queued profile updates
	profileHandler := profilefeature.NewHandler(db, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Course catalog, enrollment, and the instructor invitation surface
	coursesHandler := coursesfeature.NewHandler(db, gate, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler, sessionMgr))

	// Code runs and results
	submissionsHandler := submissionsfeature.NewHandler(deps.MongoClient, db, gate, logger)
	r.Mount("/submissions", submissionsfeature.Routes(submissionsHandler, sessionMgr))

	// Exercise forum
	commentsHandler := commentsfeature.NewHandler(db, logger)
	r.Mount("/comments", commentsfeature.Routes(commentsHandler, sessionMgr))

	// Instructor-facing usage counters
	insightsHandler := insightsfeature.NewHandler(db, gate, logger)
	r.Mount("/insights", insightsfeature.Routes(insightsHandler, sessionMgr))

	// Operational endpoints
	adminHandler := adminfeature.NewHandler(engine, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

	return r, nil
}
