// Package session resolves opaque session ids against the shared
// session store. The resolved user id is the only authorization
// evidence the task endpoints act on.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"taskmanager/internal/core/domain"
)

const keyPrefix = "sid:"

// Key returns the store key for a session id.
func Key(sessionId string) string {
	return keyPrefix + sessionId
}

// parseUserId turns a stored session value into a user id. Anything
// that is not a positive integer fails closed as no-session.
func parseUserId(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return 0, domain.ErrNoSession
	}

	userId, err := strconv.Atoi(raw)

	if err != nil || userId <= 0 {
		return 0, fmt.Errorf("%w: malformed session value", domain.ErrNoSession)
	}

	return userId, nil
}
