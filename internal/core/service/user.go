package service

import (
	"context"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo}
}

func (us *UserService) GetUserByID(ctx context.Context, id int) (domain.User, error) {
	user, err := us.repo.GetByID(ctx, id)

	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := us.repo.ListAll(ctx)

	if err != nil {
		return nil, err
	}

	return users, nil
}
