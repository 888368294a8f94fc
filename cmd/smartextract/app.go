package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/smart-extract/internal/api"
	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/phrazzld/smart-extract/internal/events"
	"github.com/phrazzld/smart-extract/internal/generation"
	"github.com/phrazzld/smart-extract/internal/platform/gemini"
	"github.com/phrazzld/smart-extract/internal/platform/openai"
	"github.com/phrazzld/smart-extract/internal/platform/postgres"
	"github.com/phrazzld/smart-extract/internal/service"
	"github.com/phrazzld/smart-extract/internal/task"
	"github.com/phrazzld/smart-extract/internal/vault"
)

// shutdownTimeout bounds how long in-flight tasks may run after a stop request.
const shutdownTimeout = 30 * time.Second

// application holds all the dependencies for the commands.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	vault    *vault.Vault
	services *service.Services

	store   task.TaskStore
	queue   *task.Queue
	emitter *events.InMemoryEventEmitter
	driver  *batch.Driver
}

// newAnalyzer builds the provider chosen by cfg and wraps it with retries and
// rate limiting.
func newAnalyzer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*generation.Analyzer, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}

	var (
		gen generation.Generator
		err error
	)
	switch cfg.LLM.Provider {
	case "gemini":
		gen, err = gemini.NewGenerator(ctx, logger, cfg.LLM)
	default:
		gen, err = openai.NewGenerator(logger, cfg.LLM, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	gen = generation.NewRetrying(gen, cfg.LLM.MaxRetries, cfg.LLM.RetryDelay, logger)
	gen = generation.NewRateLimited(gen, cfg.LLM.RequestsPerMinute)

	prompts := generation.DefaultPrompts()
	if cfg.LLM.PromptTemplatePath != "" {
		prompts, err = generation.LoadPrompts(cfg.LLM.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompt templates: %w", err)
		}
	}

	analyzer, err := generation.NewAnalyzer(gen, prompts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	logger.Info("LLM analyzer initialized",
		"provider", cfg.LLM.Provider,
		"requests_per_minute", cfg.LLM.RequestsPerMinute)
	return analyzer, nil
}

// newApplication wires the vault, services, task queue and batch driver. Progress
// is rendered to progress; a nil writer disables the status line.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	analyzer service.Analyzer,
	progress io.Writer,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.vault, err = vault.Open(cfg.Vault.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	logger.Debug("vault opened", "root", app.vault.Root())

	app.services = service.New(app.vault, analyzer, service.OptionsFromConfig(cfg), logger)

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}
	app.queue = task.NewQueue(queueConfig(cfg.Batch), logger, task.WithStore(app.store))

	app.emitter = events.NewInMemoryEventEmitter(logger)
	if progress != nil {
		app.emitter.RegisterHandler(batch.NewStatusLine(progress))
	}
	app.emitter.RegisterHandler(batch.NewLogHandler(logger))
	app.driver = batch.NewDriver(app.queue, app.emitter, batchSettings(cfg.Batch), logger)

	return app, nil
}

// setupStore selects the Postgres task history when a database is configured and
// the in-memory history otherwise.
func (app *application) setupStore(ctx context.Context) error {
	if app.config.Database.URL == "" {
		app.store = task.NewMemoryStore(0)
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database.URL, app.logger)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, db, app.logger); err != nil {
		_ = db.Close()
		return err
	}
	app.db = db
	app.store = postgres.NewTaskStore(db)
	return nil
}

// router builds the HTTP API over the application's queue and services.
func (app *application) router() http.Handler {
	return api.NewRouter(app.logger, api.Handlers{
		Extract: api.NewExtractHandler(app.queue, app.services.Extract, app.logger),
		Batches: api.NewBatchHandler(app.driver, app.vault, app.services, app.logger),
		Queue:   api.NewQueueHandler(app.queue, app.store),
	})
}

// applyConfig pushes the live-tunable settings of a reloaded configuration into
// the running queue and driver.
func (app *application) applyConfig(cfg *config.Config) {
	if !app.config.BatchSettingsChanged(cfg) {
		return
	}
	app.queue.SetMaxConcurrent(cfg.Batch.MaxConcurrent)
	app.queue.SetInterTaskDelay(cfg.Batch.InterTaskDelay)
	app.driver.UpdateSettings(batchSettings(cfg.Batch))
	app.config = cfg

	app.logger.Info("batch settings updated",
		"max_concurrent", cfg.Batch.MaxConcurrent,
		"inter_task_delay", cfg.Batch.InterTaskDelay,
		"delay_between_files", cfg.Batch.DelayBetweenFiles)
}

// cleanup drains the queue and closes the database.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.queue != nil {
		if err := app.queue.Shutdown(ctx); err != nil {
			app.logger.Error("error shutting down task queue", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Debug("application shutdown completed")
}
