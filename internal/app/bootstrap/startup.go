// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	mailoutboxstore "github.com/courseloop/courseloop/internal/app/store/mailoutbox"
	"github.com/courseloop/courseloop/internal/app/system/mailer"
	"github.com/courseloop/courseloop/internal/app/system/propagate"
	"github.com/courseloop/courseloop/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// runner holds the background jobs for the lifetime of the process.
// Started here, stopped in Shutdown.
var runner *tasks.Runner

// Startup launches the background workers: the pending-update drain and the
// mail outbox delivery. Either can be disabled via config for deployments
// that run workers in a dedicated process.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var jobs []tasks.Job

	if appCfg.RunDrainWorker {
		engine := propagate.New(deps.MongoDatabase, logger)
		jobs = append(jobs, tasks.DrainJob(engine, logger, appCfg.DrainInterval))
	}

	if appCfg.RunOutboxWorker && appCfg.SendGridKey != "" {
		outbox := mailoutboxstore.New(deps.MongoDatabase)
		sender := mailer.NewSender(appCfg.SendGridKey, appCfg.MailFromName, appCfg.MailFrom)
		jobs = append(jobs, tasks.OutboxMailJob(outbox, sender, logger, appCfg.OutboxInterval))
	}

	if len(jobs) == 0 {
		logger.Info("no background workers enabled")
		return nil
	}

	runner = tasks.NewRunner(logger, jobs...)
	runner.Start()
	return nil
}
