package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/planner"
	"reminders/internal/service"
)

type Handler interface {
	HandleListTasks(c *gin.Context)
	HandleTasksByCategory(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleCompleteTask(c *gin.Context)
	HandleUncompleteTask(c *gin.Context)
	HandleCheckIn(c *gin.Context)
	HandleClearCheckIn(c *gin.Context)
	HandleEnhanceTask(c *gin.Context)
	HandleSummary(c *gin.Context)
	HandleRecover(c *gin.Context)

	HandleListCategories(c *gin.Context)
	HandleCreateCategory(c *gin.Context)
	HandleDeleteCategory(c *gin.Context)

	HandleExportBackup(c *gin.Context)
	HandleImportBackup(c *gin.Context)
}

// TaskService is the part of service.TaskService the API uses.
type TaskService interface {
	Options() planner.Options
	List(ctx context.Context) ([]*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, input service.TaskInput, now time.Time) (*model.Task, error)
	Update(ctx context.Context, id string, patch service.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, now time.Time) (service.CompletionResult, error)
	Uncomplete(ctx context.Context, id string, now time.Time) (*model.Task, error)
	CheckIn(ctx context.Context, id string, now time.Time) (*model.Task, error)
	ClearCheckIn(ctx context.Context, id string, now time.Time) (*model.Task, error)
	Enhance(ctx context.Context, id string) (*model.Task, error)
	Buckets(ctx context.Context, now time.Time) (planner.Buckets, error)
	Summary(ctx context.Context, now time.Time) (planner.AttentionSummary, error)
	RecoverMissingOccurrences(ctx context.Context, now time.Time) ([]*model.Task, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]*model.Category, error)
	Create(ctx context.Context, input service.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

type BackupService interface {
	Export(ctx context.Context, now time.Time) (service.Backup, error)
	Import(ctx context.Context, b service.Backup) (service.RestoreReport, error)
}

type handlerImpl struct {
	logger     zerolog.Logger
	tasks      TaskService
	categories CategoryService
	backup     BackupService
	now        func() time.Time
}

// New builds the v1 handler. now supplies the current time in the user's
// location.
func New(
	logger zerolog.Logger,
	taskService TaskService,
	categoryService CategoryService,
	backupService BackupService,
	now func() time.Time,
) Handler {
	if now == nil {
		now = time.Now
	}
	return &handlerImpl{
		logger:     logger,
		tasks:      taskService,
		categories: categoryService,
		backup:     backupService,
		now:        now,
	}
}

// Register mounts every v1 route under /api/v1.
func Register(router gin.IRouter, h Handler) {
	router = router.Group("/api/v1")

	tasks := router.Group("/tasks")
	tasks.GET("", h.HandleListTasks)
	tasks.POST("", h.HandleCreateTask)
	tasks.GET("/by-category", h.HandleTasksByCategory)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.PATCH("/:id", h.HandleUpdateTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)
	tasks.POST("/:id/complete", h.HandleCompleteTask)
	tasks.POST("/:id/uncomplete", h.HandleUncompleteTask)
	tasks.POST("/:id/checkin", h.HandleCheckIn)
	tasks.DELETE("/:id/checkin", h.HandleClearCheckIn)
	tasks.POST("/:id/enhance", h.HandleEnhanceTask)

	router.GET("/summary", h.HandleSummary)
	router.POST("/recover", h.HandleRecover)

	categories := router.Group("/categories")
	categories.GET("", h.HandleListCategories)
	categories.POST("", h.HandleCreateCategory)
	categories.DELETE("/:id", h.HandleDeleteCategory)

	router.GET("/backup", h.HandleExportBackup)
	router.POST("/backup", h.HandleImportBackup)
}
