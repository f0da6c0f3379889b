package factory

import (
	fab "github.com/Goldziher/fabricator"

	"taskmanager/internal/core/domain"
)

// NewTask builds a task instance defaulting to open status.
func NewTask(customData ...map[string]any) domain.Task {
	instance := fab.New(domain.Task{})

	hasStatus := false

	for _, data := range customData {
		if _, exists := data["Status"]; exists {
			hasStatus = true
			break
		}
	}

	if !hasStatus {
		customData = append(customData, map[string]any{
			"Status": domain.TaskStatusOpen,
		})
	}

	return instance.Build(customData...)
}
