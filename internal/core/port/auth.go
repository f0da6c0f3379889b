package port

import (
	"context"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
)

type AuthService interface {
	Registration(ctx context.Context, req *request.RegisterRequest) (*domain.User, string, error)
	Authenticate(ctx context.Context, req *request.LoginRequest) (*domain.User, string, error)
}

// TokenProvider mints and checks self-contained bearer tokens.
// This seam and SessionResolver are deliberately separate: the user
// service hands out tokens, the task service trusts sessions. The two
// mechanisms are never unified.
type TokenProvider interface {
	Issue(userId int) (string, error)
	Verify(token string) (int, error)
}

// SessionResolver maps an opaque session id to a user id. The task
// service does no cryptographic check of its own: whoever can write
// into the session namespace of the shared store can mint identities.
// Absent, expired and malformed entries all resolve to
// domain.ErrNoSession with no further detail.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionId string) (int, error)
}
