package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
	"taskmanager/pkg/telemetry"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc     port.TaskService
	metrics *telemetry.AppMetrics
}

func NewTaskHandler(svc port.TaskService, metrics *telemetry.AppMetrics) *TaskHandler {
	return &TaskHandler{
		svc:     svc,
		metrics: metrics,
	}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	userId, ok := middleware.SessionUserId(c)

	if !ok {
		SendUnauthorizedError(c, "No session")
		return
	}

	tasks, err := h.svc.ListTasks(ctx, userId)

	if err != nil {
		slog.Error("Task#ListTasks", "error", err, "user_id", userId)
		SendInternalError(c, "Could not list tasks")
		return
	}

	h.record(c, "list")
	SendSuccess(c, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	userId, ok := middleware.SessionUserId(c)

	if !ok {
		SendUnauthorizedError(c, "No session")
		return
	}

	params, err := util.BindParams[request.TaskRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	task, err := h.svc.Create(ctx, userId, params.Title, middleware.SessionUserEmail(c))

	if err != nil {
		slog.Error("Task#CreateTask", "error", err, "user_id", userId)
		SendInternalError(c, "Could not create task")
		return
	}

	h.record(c, "create")
	SendSuccess(c, http.StatusCreated, task.ToMap())
}

func (h *TaskHandler) MarkDone(c *gin.Context) {
	h.setStatus(c, "done")
}

func (h *TaskHandler) Reactivate(c *gin.Context) {
	h.setStatus(c, "reactivate")
}

func (h *TaskHandler) setStatus(c *gin.Context, operation string) {
	ctx := c.Request.Context()

	userId, ok := middleware.SessionUserId(c)

	if !ok {
		SendUnauthorizedError(c, "No session")
		return
	}

	taskId, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendBadRequestError(c, "id", "Invalid task id")
		return
	}

	email := middleware.SessionUserEmail(c)

	var task domain.Task

	if operation == "done" {
		task, err = h.svc.MarkDone(ctx, taskId, userId, email)
	} else {
		task, err = h.svc.Reactivate(ctx, taskId, userId, email)
	}

	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			SendNotFoundError(c, "Task not found")
			return
		}

		slog.Error("Task#setStatus", "error", err, "user_id", userId, "task_id", taskId)
		SendInternalError(c, "Could not update task")
		return
	}

	h.record(c, operation)
	SendSuccess(c, http.StatusOK, task.ToMap())
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()

	userId, ok := middleware.SessionUserId(c)

	if !ok {
		SendUnauthorizedError(c, "No session")
		return
	}

	taskId, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendBadRequestError(c, "id", "Invalid task id")
		return
	}

	if err := h.svc.Delete(ctx, taskId, userId); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			SendNotFoundError(c, "Task not found")
			return
		}

		slog.Error("Task#DeleteTask", "error", err, "user_id", userId, "task_id", taskId)
		SendInternalError(c, "Could not delete task")
		return
	}

	h.record(c, "delete")
	SendSuccess(c, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *TaskHandler) record(c *gin.Context, operation string) {
	if h.metrics != nil {
		h.metrics.RecordTaskOperation(c.Request.Context(), operation)
	}
}
