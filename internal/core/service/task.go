package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/telemetry"
	"taskmanager/pkg/tracing"
)

const DefaultListTTL = 30 * time.Second

// TaskService fronts the task store with a cache-aside listing cache.
// Reads populate the per-user entry on miss; every successful mutation
// deletes it before the call returns, so a user always reads their own
// last write. A populate racing an invalidate can leave an entry that
// is stale for at most one TTL window.
type TaskService struct {
	repo     port.TaskRepository
	cache    port.CacheRepository
	notifier port.Notifier
	metrics  *telemetry.AppMetrics
	listTTL  time.Duration
}

func NewTaskService(repo port.TaskRepository, cache port.CacheRepository, notifier port.Notifier) *TaskService {
	return &TaskService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		listTTL:  DefaultListTTL,
	}
}

// WithListTTL overrides the listing cache TTL.
func (ts *TaskService) WithListTTL(ttl time.Duration) *TaskService {
	if ttl > 0 {
		ts.listTTL = ttl
	}

	return ts
}

// WithMetrics enables cache hit/miss counters.
func (ts *TaskService) WithMetrics(metrics *telemetry.AppMetrics) *TaskService {
	ts.metrics = metrics

	return ts
}

func ListCacheKey(userId int) string {
	return fmt.Sprintf("tasks:%d", userId)
}

func (ts *TaskService) ListTasks(ctx context.Context, userId int) ([]response.TaskResponse, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.task.ListTasks", []attribute.KeyValue{
		attribute.Int("user.id", userId),
	})

	defer span.End()

	key := ListCacheKey(userId)

	if cached, err := ts.cache.Get(ctx, key); err == nil {
		var data []response.TaskResponse

		if err := json.Unmarshal(cached, &data); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))

			if ts.metrics != nil {
				ts.metrics.RecordCacheHit(ctx, "tasks")
			}

			return data, nil
		}

		// Undecodable entry: treat as a miss and evict.
		ts.cache.Delete(ctx, key)
	} else if !errors.Is(err, port.ErrCacheMiss) {
		slog.Error("Task#ListTasks cache read failed", "error", err, "user_id", userId)
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	if ts.metrics != nil {
		ts.metrics.RecordCacheMiss(ctx, "tasks")
	}

	tasks, err := ts.repo.ListByUser(ctx, userId)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	data := make([]response.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		data = append(data, toTaskResponse(task))
	}

	if encoded, err := json.Marshal(data); err == nil {
		if err := ts.cache.Set(ctx, key, encoded, ts.listTTL); err != nil {
			slog.Error("Task#ListTasks cache write failed", "error", err, "user_id", userId)
		}
	}

	return data, nil
}

func (ts *TaskService) Create(ctx context.Context, userId int, title, notifyEmail string) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.task.Create", []attribute.KeyValue{
		attribute.Int("user.id", userId),
	})

	defer span.End()

	now := time.Now()

	task := domain.Task{
		UserId:    userId,
		Title:     title,
		Status:    domain.TaskStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := ts.repo.Create(ctx, task)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	ts.invalidate(ctx, userId)
	ts.notifier.Notify(notifyEmail, "Task created",
		fmt.Sprintf("<p>Your task '<b>%s</b>' was created.</p>", saved.Title))

	return saved, nil
}

func (ts *TaskService) MarkDone(ctx context.Context, id, userId int, notifyEmail string) (domain.Task, error) {
	task, err := ts.setStatus(ctx, id, userId, domain.TaskStatusDone)

	if err != nil {
		return domain.Task{}, err
	}

	ts.notifier.Notify(notifyEmail, "Task completed",
		fmt.Sprintf("<p>Your task '<b>%s</b>' was marked done.</p>", task.Title))

	return task, nil
}

func (ts *TaskService) Reactivate(ctx context.Context, id, userId int, notifyEmail string) (domain.Task, error) {
	task, err := ts.setStatus(ctx, id, userId, domain.TaskStatusOpen)

	if err != nil {
		return domain.Task{}, err
	}

	ts.notifier.Notify(notifyEmail, "Task reactivated",
		fmt.Sprintf("<p>Your task '<b>%s</b>' was reactivated.</p>", task.Title))

	return task, nil
}

func (ts *TaskService) Delete(ctx context.Context, id, userId int) error {
	ctx, span := tracing.CreateChildSpan(ctx, "service.task.Delete", []attribute.KeyValue{
		attribute.Int("user.id", userId),
		attribute.Int("task.id", id),
	})

	defer span.End()

	if err := ts.repo.Delete(ctx, id, userId); err != nil {
		tracing.AddSpanError(span, err)
		return err
	}

	ts.invalidate(ctx, userId)

	return nil
}

func (ts *TaskService) setStatus(ctx context.Context, id, userId int, status domain.TaskStatus) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.task.SetStatus", []attribute.KeyValue{
		attribute.Int("user.id", userId),
		attribute.Int("task.id", id),
		attribute.String("task.status", string(status)),
	})

	defer span.End()

	task, err := ts.repo.SetStatus(ctx, id, userId, status)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	ts.invalidate(ctx, userId)

	return task, nil
}

// invalidate runs only after a confirmed mutation. A cache delete that
// fails is logged and left to TTL expiry; the staleness window stays
// bounded by listTTL.
func (ts *TaskService) invalidate(ctx context.Context, userId int) {
	if err := ts.cache.Delete(ctx, ListCacheKey(userId)); err != nil {
		slog.Error("Task cache invalidation failed", "error", err, "user_id", userId)
	}
}

func toTaskResponse(task domain.Task) response.TaskResponse {
	return response.TaskResponse{
		ID:        task.ID,
		UserId:    task.UserId,
		Title:     task.Title,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
