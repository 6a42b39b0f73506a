package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"reminders/internal/annotate"
	"reminders/internal/config"
	"reminders/internal/logger"
	"reminders/internal/repository"
	"reminders/internal/service"
)

// App holds the wired services shared by every entry point.
type App struct {
	Config config.Config
	Log    zerolog.Logger
	Loc    *time.Location

	Tasks      *service.TaskService
	Categories *service.CategoryService
	Reminders  *service.ReminderService
	Imports    *service.ImportService
	Backups    *service.BackupService

	db *gorm.DB
}

// New opens the database, builds the services and seeds the default
// categories on first run. Log output goes to w.
func New(ctx context.Context, cfg config.Config, w io.Writer) (*App, error) {
	log, err := logger.New(cfg.Env, w)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.DSN, logger.Component(log, "db"))
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	var annotator service.Annotator
	if cfg.Annotation.Endpoint != "" {
		annotator = annotate.NewClient(
			cfg.Annotation.Endpoint,
			cfg.Annotation.APIKey,
			cfg.Annotation.Model,
			cfg.Annotation.Timeout.Std(),
		)
	}

	opts := cfg.PlannerOptions()
	a := &App{
		Config:     cfg,
		Log:        log,
		Loc:        loc,
		Tasks:      service.NewTaskService(taskRepo, categoryRepo, annotator, opts, logger.Component(log, "tasks")),
		Categories: service.NewCategoryService(categoryRepo, logger.Component(log, "categories")),
		Reminders:  service.NewReminderService(taskRepo, opts, logger.Component(log, "reminders")),
		Imports:    service.NewImportService(taskRepo, categoryRepo, logger.Component(log, "import")),
		Backups:    service.NewBackupService(taskRepo, categoryRepo, logger.Component(log, "backup")),
		db:         db,
	}

	if _, err := a.Categories.EnsureDefaults(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	return a, nil
}

// Now is the current time in the configured timezone.
func (a *App) Now() time.Time {
	return time.Now().In(a.Loc)
}

func (a *App) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
