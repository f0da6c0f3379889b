package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type TaskRepository struct {
	db *sqlite.DB
}

func NewTaskRepository(db *sqlite.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func (tr *TaskRepository) ListByUser(ctx context.Context, userId int) ([]domain.Task, error) {
	query := tr.db.QueryBuilder.Select("id", "user_id", "title", "status", "created_at", "updated_at").
		From("tasks").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("created_at DESC, id DESC")

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

	if err != nil {
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

	return tasks, rows.Err()
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	query := tr.db.QueryBuilder.Insert("tasks").
		Columns("user_id", "title", "status", "created_at", "updated_at").
		Values(task.UserId, task.Title, task.Status, task.CreatedAt, task.UpdatedAt)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, err
	}

	return tr.getOwned(ctx, int(id), task.UserId)
}

func (tr *TaskRepository) SetStatus(ctx context.Context, id, userId int, status domain.TaskStatus) (domain.Task, error) {
	query := tr.db.QueryBuilder.Update("tasks").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "user_id": userId})

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.Task{}, err
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return domain.Task{}, err
	}

	if affected == 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	return tr.getOwned(ctx, id, userId)
}

func (tr *TaskRepository) Delete(ctx context.Context, id, userId int) error {
	query := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id, "user_id": userId})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (tr *TaskRepository) getOwned(ctx context.Context, id, userId int) (domain.Task, error) {
	query := tr.db.QueryBuilder.Select("id", "user_id", "title", "status", "created_at", "updated_at").
		From("tasks").
		Where(sq.Eq{"id": id, "user_id": userId}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRowContext(ctx, stmt, args...).Scan)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}

		return domain.Task{}, err
	}

	return task, nil
}

// scanTask reads one task row. The status text is validated so a row
// holding anything other than open or done surfaces as an error instead
// of an unknown status value.
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
