package domain

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

type Task struct {
	ID        int
	UserId    int
	Title     string     `validate:"required,min=1,max=255"`
	Status    TaskStatus `validate:"oneof=open done"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Task) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         t.ID,
		"user_id":    t.UserId,
		"title":      t.Title,
		"status":     string(t.Status),
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// ParseTaskStatus validates status text coming out of storage. Empty
// text maps to open, matching the column default.
func ParseTaskStatus(status string) (TaskStatus, error) {
	switch status {
	case "open", "":
		return TaskStatusOpen, nil
	case "done":
		return TaskStatusDone, nil
	default:
		return "", fmt.Errorf("invalid status: %s", status)
	}
}
