package port

import (
	"context"

	"taskmanager/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, id int) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}
