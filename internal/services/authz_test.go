package services_test

import (
	"testing"

	"tareas-api/internal/models"
	"tareas-api/internal/services"

	"github.com/stretchr/testify/assert"
)

const (
	creatorID  uint = 1
	assigneeID uint = 2
	strangerID uint = 3
)

func sampleTask() *models.Task {
	return &models.Task{
		ID:        10,
		Titulo:    "Buy milk",
		CreatorID: creatorID,
		Assignees: []models.User{
			{ID: creatorID, Email: "alice@example.com"},
			{ID: assigneeID, Email: "bob@example.com"},
		},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		actorID uint
		action  services.Action
		allowed bool
	}{
		{"creator reads", creatorID, services.ActionRead, true},
		{"assignee reads", assigneeID, services.ActionRead, true},
		{"stranger reads", strangerID, services.ActionRead, false},

		{"creator updates", creatorID, services.ActionUpdate, true},
		{"assignee updates", assigneeID, services.ActionUpdate, true},
		{"stranger updates", strangerID, services.ActionUpdate, false},

		{"creator deletes", creatorID, services.ActionDelete, true},
		{"assignee deletes", assigneeID, services.ActionDelete, false},
		{"stranger deletes", strangerID, services.ActionDelete, false},

		{"creator assigns", creatorID, services.ActionAssign, true},
		{"assignee assigns", assigneeID, services.ActionAssign, false},
		{"stranger assigns", strangerID, services.ActionAssign, false},

		{"creator unassigns", creatorID, services.ActionUnassign, true},
		{"assignee unassigns", assigneeID, services.ActionUnassign, false},
		{"stranger unassigns", strangerID, services.ActionUnassign, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := services.Decide(tt.actorID, sampleTask(), tt.action)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestDecide_UnknownActionDenied(t *testing.T) {
	decision := services.Decide(creatorID, sampleTask(), services.Action("export"))
	assert.False(t, decision.Allowed)
}

func TestDecide_DoesNotMutateTask(t *testing.T) {
	task := sampleTask()
	before := len(task.Assignees)

	services.Decide(strangerID, task, services.ActionUpdate)
	services.Decide(creatorID, task, services.ActionDelete)

	assert.Equal(t, before, len(task.Assignees))
	assert.Equal(t, creatorID, task.CreatorID)
}
