package service

import (
	"context"
	"log/slog"
	"time"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
)

type AuthService struct {
	repo   port.UserRepository
	tokens port.TokenProvider
}

func NewAuthService(repo port.UserRepository, tokens port.TokenProvider) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

func (as *AuthService) Registration(ctx context.Context, req *request.RegisterRequest) (*domain.User, string, error) {
	exists, err := as.repo.ExistsByEmailOrUsername(ctx, req.Email, req.Username)

	if err != nil {
		return nil, "", err
	}

	if exists {
		return nil, "", domain.ErrUserExists
	}

	hashed, err := util.HashPassword(req.Password)

	if err != nil {
		return nil, "", err
	}

	user := domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		CreatedAt:    time.Now(),
	}

	saved, err := as.repo.Create(ctx, user)

	if err != nil {
		return nil, "", err
	}

	token, err := as.tokens.Issue(saved.ID)

	if err != nil {
		return nil, "", err
	}

	return &saved, token, nil
}

func (as *AuthService) Authenticate(ctx context.Context, req *request.LoginRequest) (*domain.User, string, error) {
	user, err := as.repo.GetByEmail(ctx, req.Email)

	if err != nil {
		slog.Error("Auth#Authenticate", "get_by_email", err)
		return nil, "", domain.ErrUserNotFound
	}

	if err := util.ComparePassword(req.Password, user.PasswordHash); err != nil {
		return nil, "", domain.ErrUserNotFound
	}

	token, err := as.tokens.Issue(user.ID)

	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}
