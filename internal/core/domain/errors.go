package domain

import "errors"

var (
	// ErrUserExists is returned when registration hits the username or
	// email unique constraint.
	ErrUserExists = errors.New("user already exists")

	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound covers both a missing task and a task owned by a
	// different user. Callers must not be able to tell them apart.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoSession covers missing, expired and malformed sessions alike.
	ErrNoSession = errors.New("no session")

	// ErrSessionStoreUnavailable means the session store could not be
	// reached, so nothing can be said about the session either way.
	ErrSessionStoreUnavailable = errors.New("session store unavailable")
)
