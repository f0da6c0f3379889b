package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"taskmanager/internal/adapter/database/postgres"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/tracing"
)

const taskColumns = "id, user_id, title, status, created_at, updated_at"

type TaskRepository struct {
	db *postgres.DB
}

func NewTaskRepository(db *postgres.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func (tr *TaskRepository) ListByUser(ctx context.Context, userId int) ([]domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.ListByUser", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int("user.id", userId),
	})

	defer span.End()

	query := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("created_at DESC, id DESC")

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Query(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error fetching tasks", "error", err)
		return nil, err
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows.Scan)

		if err != nil {
			return nil, err
		}

		tasks = append(tasks, task)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(tasks)))

	return tasks, rows.Err()
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.Create", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "INSERT"),
		attribute.Int("user.id", task.UserId),
	})

	defer span.End()

	query := tr.db.QueryBuilder.Insert("tasks").
		Columns("user_id", "title", "status", "created_at", "updated_at").
		Values(task.UserId, task.Title, task.Status, task.CreatedAt, task.UpdatedAt).
		Suffix("RETURNING " + taskColumns)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	saved, err := scanTask(tr.db.QueryRow(ctx, stmt, args...).Scan)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	return saved, nil
}

// SetStatus updates status and updated_at in one statement scoped by
// (id, user_id). A missing row and a foreign row are the same failure.
func (tr *TaskRepository) SetStatus(ctx context.Context, id, userId int, status domain.TaskStatus) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.SetStatus", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int("task.id", id),
		attribute.Int("user.id", userId),
	})

	defer span.End()

	query := tr.db.QueryBuilder.Update("tasks").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "user_id": userId}).
		Suffix("RETURNING " + taskColumns)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, stmt, args...).Scan)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}

		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	return task, nil
}

// scanTask reads one task row, validating the status text so unknown
// values fail loudly instead of leaking into responses.
func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var task domain.Task
	var status string

	if err := scan(&task.ID, &task.UserId, &task.Title, &status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return domain.Task{}, err
	}

	parsed, err := domain.ParseTaskStatus(status)

	if err != nil {
		return domain.Task{}, err
	}

	task.Status = parsed

	return task, nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id, userId int) error {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.Delete", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int("task.id", id),
		attribute.Int("user.id", userId),
	})

	defer span.End()

	query := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id, "user_id": userId})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	tag, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}
