package port

import (
	"context"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/response"
)

type TaskRepository interface {
	ListByUser(ctx context.Context, userId int) ([]domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)

	// SetStatus and Delete match on (id, user_id) in a single statement.
	// Zero matched rows means domain.ErrTaskNotFound, regardless of
	// whether the task is missing or owned by someone else.
	SetStatus(ctx context.Context, id, userId int, status domain.TaskStatus) (domain.Task, error)
	Delete(ctx context.Context, id, userId int) error
}

type TaskService interface {
	ListTasks(ctx context.Context, userId int) ([]response.TaskResponse, error)
	Create(ctx context.Context, userId int, title, notifyEmail string) (domain.Task, error)
	MarkDone(ctx context.Context, id, userId int, notifyEmail string) (domain.Task, error)
	Reactivate(ctx context.Context, id, userId int, notifyEmail string) (domain.Task, error)
	Delete(ctx context.Context, id, userId int) error
}
