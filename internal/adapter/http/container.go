package http

import (
	"time"

	"taskmanager/internal/adapter/http/handler"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/service"
	"taskmanager/pkg/telemetry"
)

// UserContainer wires the user service dependency graph.
type UserContainer struct {
	UserRepo port.UserRepository

	AuthUseCase port.AuthService
	UserUseCase port.UserService

	AuthHandler *handler.AuthHandler
	UserHandler *handler.UserHandler
}

func NewUserContainer(userRepo port.UserRepository, tokens port.TokenProvider, metrics *telemetry.AppMetrics) *UserContainer {
	authSvc := service.NewAuthService(userRepo, tokens)
	userSvc := service.NewUserService(userRepo)

	return &UserContainer{
		UserRepo: userRepo,

		AuthUseCase: authSvc,
		UserUseCase: userSvc,

		AuthHandler: handler.NewAuthHandler(authSvc, metrics),
		UserHandler: handler.NewUserHandler(userSvc),
	}
}

// TaskContainer wires the task service dependency graph.
type TaskContainer struct {
	TaskRepo port.TaskRepository

	TaskUseCase port.TaskService

	TaskHandler *handler.TaskHandler
}

func NewTaskContainer(taskRepo port.TaskRepository, cache port.CacheRepository, notifier port.Notifier, metrics *telemetry.AppMetrics, listTTL time.Duration) *TaskContainer {
	taskSvc := service.NewTaskService(taskRepo, cache, notifier).WithListTTL(listTTL).WithMetrics(metrics)

	return &TaskContainer{
		TaskRepo: taskRepo,

		TaskUseCase: taskSvc,

		TaskHandler: handler.NewTaskHandler(taskSvc, metrics),
	}
}
