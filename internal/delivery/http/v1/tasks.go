package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reminders/internal/model"
	"reminders/internal/planner"
	"reminders/internal/service"
)

type getTaskResponse struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Notes                string      `json:"notes"`
	DueDate              *time.Time  `json:"dueDate,omitempty"`
	Priority             string      `json:"priority"`
	IsCompleted          bool        `json:"isCompleted"`
	CompletedAt          *time.Time  `json:"completedAt,omitempty"`
	Recurrence           string      `json:"recurrence"`
	RecurrenceLabel      string      `json:"recurrenceLabel"`
	Kind                 string      `json:"kind"`
	CategoryID           *string     `json:"categoryId,omitempty"`
	CategoryName         string      `json:"categoryName,omitempty"`
	AIContext            string      `json:"aiContext,omitempty"`
	HabitCompletionDates []time.Time `json:"habitCompletionDates,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`

	IsOverdue          bool   `json:"isOverdue"`
	IsDueToday         bool   `json:"isDueToday"`
	IsDueTomorrow      bool   `json:"isDueTomorrow"`
	DaysUntilDue       *int   `json:"daysUntilDue,omitempty"`
	DaysUntilDueText   string `json:"daysUntilDueText,omitempty"`
	IsDistantRecurring bool   `json:"isDistantRecurring"`
	IsCompletedToday   bool   `json:"isCompletedToday"`
	Streak             int    `json:"streak,omitempty"`
}

func newGetTaskResponse(task *model.Task, now time.Time, opts planner.Options) getTaskResponse {
	resp := getTaskResponse{
		ID:                   task.ID,
		Title:                task.Title,
		Notes:                task.Notes,
		DueDate:              task.DueDate,
		Priority:             task.Priority.String(),
		IsCompleted:          task.IsCompleted,
		CompletedAt:          task.CompletedAt,
		Recurrence:           string(task.Recurrence),
		RecurrenceLabel:      task.Recurrence.Label(),
		Kind:                 string(task.Kind),
		CategoryID:           task.CategoryID,
		CategoryName:         task.CategoryName(),
		AIContext:            task.AIContext,
		HabitCompletionDates: task.HabitCompletionDates,
		CreatedAt:            task.CreatedAt,
		UpdatedAt:            task.UpdatedAt,

		IsOverdue:          task.IsOverdue(now),
		IsDueToday:         task.IsDueToday(now),
		IsDueTomorrow:      task.IsDueTomorrow(now),
		DaysUntilDueText:   task.DaysUntilDueText(now),
		IsDistantRecurring: task.IsDistantRecurring(now, opts.DistantRecurringDays),
		IsCompletedToday:   task.IsCompletedToday(now),
	}
	if days, ok := task.DaysUntilDue(now); ok {
		resp.DaysUntilDue = &days
	}
	if task.IsHabit() {
		resp.Streak = task.CurrentStreak(now)
	}
	return resp
}

func (h *handlerImpl) newGetTasksResponse(tasks []*model.Task, now time.Time) []getTaskResponse {
	opts := h.tasks.Options()
	out := make([]getTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newGetTaskResponse(t, now, opts))
	}
	return out
}

type createTaskRequest struct {
	Title      string     `json:"title" binding:"required,max=255"`
	Notes      string     `json:"notes"`
	DueDate    *time.Time `json:"dueDate"`
	Priority   string     `json:"priority"`
	Recurrence string     `json:"recurrence"`
	Category   string     `json:"category"`
	Enhance    bool       `json:"enhance"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	now := h.now()
	task, err := h.tasks.Create(c, service.TaskInput{
		Title:        req.Title,
		Notes:        req.Notes,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		Recurrence:   req.Recurrence,
		CategoryName: req.Category,
		Enhance:      req.Enhance,
	}, now)
	if err != nil {
		h.abortWithError(c, err, "failed to create task")
		return
	}

	h.logger.Debug().
		Str("id", task.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, newGetTaskResponse(task, now, h.tasks.Options()))
}

// HandleListTasks serves one bucket, picked by the bucket query parameter.
func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	now := h.now()
	bucket := c.DefaultQuery("bucket", "all")

	var tasks []*model.Task
	if bucket == "all" {
		all, err := h.tasks.List(c)
		if err != nil {
			h.abortWithError(c, err, "failed to list tasks")
			return
		}
		tasks = all
	} else {
		b, err := h.tasks.Buckets(c, now)
		if err != nil {
			h.abortWithError(c, err, "failed to bucket tasks")
			return
		}
		switch bucket {
		case "attention":
			tasks = b.NeedsAttention
		case "habits":
			tasks = b.Habits
		case "scheduled":
			tasks = b.Scheduled
		case "recurring":
			tasks = b.Recurring
		case "completed":
			tasks = b.Completed
		default:
			abort(c, newBadRequestError("unknown bucket "+bucket))
			return
		}
	}

	c.JSON(http.StatusOK, h.newGetTasksResponse(tasks, now))
}

type categoryGroupResponse struct {
	Category *getCategoryResponse `json:"category"`
	Name     string               `json:"name"`
	Tasks    []getTaskResponse    `json:"tasks"`
}

func (h *handlerImpl) HandleTasksByCategory(c *gin.Context) {
	now := h.now()
	b, err := h.tasks.Buckets(c, now)
	if err != nil {
		h.abortWithError(c, err, "failed to bucket tasks")
		return
	}

	out := make([]categoryGroupResponse, 0, len(b.ByCategory))
	for _, g := range b.ByCategory {
		group := categoryGroupResponse{
			Name:  g.Name(),
			Tasks: h.newGetTasksResponse(g.Tasks, now),
		}
		if g.Category != nil {
			cat := newGetCategoryResponse(g.Category)
			group.Category = &cat
		}
		out = append(out, group)
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.Get(c, c.Param("id"))
	if err != nil {
		h.abortWithError(c, err, "failed to get task")
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponse(task, h.now(), h.tasks.Options()))
}

type updateTaskRequest struct {
	Title        *string    `json:"title,omitempty" binding:"omitempty,max=255"`
	Notes        *string    `json:"notes,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	Recurrence   *string    `json:"recurrence,omitempty"`
	Category     *string    `json:"category,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Update(c, c.Param("id"), service.TaskPatch{
		Title:        req.Title,
		Notes:        req.Notes,
		DueDate:      req.DueDate,
		ClearDue:     req.ClearDueDate,
		Priority:     req.Priority,
		Recurrence:   req.Recurrence,
		CategoryName: req.Category,
	})
	if err != nil {
		h.abortWithError(c, err, "failed to update task")
		return
	}

	h.logger.Info().Str("id", task.ID).Msg("updated task")
	c.JSON(http.StatusOK, newGetTaskResponse(task, h.now(), h.tasks.Options()))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c, c.Param("id")); err != nil {
		h.abortWithError(c, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

type completeTaskResponse struct {
	Task getTaskResponse  `json:"task"`
	Next *getTaskResponse `json:"next,omitempty"`
}

func (h *handlerImpl) HandleCompleteTask(c *gin.Context) {
	now := h.now()
	res, err := h.tasks.Complete(c, c.Param("id"), now)
	if err != nil {
		h.abortWithError(c, err, "failed to complete task")
		return
	}

	opts := h.tasks.Options()
	resp := completeTaskResponse{Task: newGetTaskResponse(res.Task, now, opts)}
	if res.Next != nil {
		next := newGetTaskResponse(res.Next, now, opts)
		resp.Next = &next
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlerImpl) HandleUncompleteTask(c *gin.Context) {
	now := h.now()
	task, err := h.tasks.Uncomplete(c, c.Param("id"), now)
	if err != nil {
		h.abortWithError(c, err, "failed to uncomplete task")
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponse(task, now, h.tasks.Options()))
}

func (h *handlerImpl) HandleCheckIn(c *gin.Context) {
	now := h.now()
	task, err := h.tasks.CheckIn(c, c.Param("id"), now)
	if err != nil {
		h.abortWithError(c, err, "failed to check in")
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponse(task, now, h.tasks.Options()))
}

func (h *handlerImpl) HandleClearCheckIn(c *gin.Context) {
	now := h.now()
	task, err := h.tasks.ClearCheckIn(c, c.Param("id"), now)
	if err != nil {
		h.abortWithError(c, err, "failed to clear check-in")
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponse(task, now, h.tasks.Options()))
}

func (h *handlerImpl) HandleEnhanceTask(c *gin.Context) {
	task, err := h.tasks.Enhance(c, c.Param("id"))
	if err != nil {
		h.abortWithError(c, err, "failed to enhance task")
		return
	}
	c.JSON(http.StatusOK, newGetTaskResponse(task, h.now(), h.tasks.Options()))
}

func (h *handlerImpl) HandleSummary(c *gin.Context) {
	sum, err := h.tasks.Summary(c, h.now())
	if err != nil {
		h.abortWithError(c, err, "failed to summarize tasks")
		return
	}
	c.JSON(http.StatusOK, sum)
}

type recoverResponse struct {
	Created []getTaskResponse `json:"created"`
}

func (h *handlerImpl) HandleRecover(c *gin.Context) {
	now := h.now()
	created, err := h.tasks.RecoverMissingOccurrences(c, now)
	if err != nil {
		h.abortWithError(c, err, "failed to recover occurrences")
		return
	}
	c.JSON(http.StatusOK, recoverResponse{Created: h.newGetTasksResponse(created, now)})
}
