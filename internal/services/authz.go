package services

import (
	"tareas-api/internal/models"
)

// Action identifies a task operation submitted to the authorization
// engine. Task creation and list retrieval never reach the engine:
// creation is open to any authenticated user, and list visibility is
// enforced by query scope in the task store.
type Action string

const (
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionAssign   Action = "assign"
	ActionUnassign Action = "unassign"
)

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide is the authorization engine: a pure function of the acting
// user, the task as currently loaded, and the requested action. It
// never touches storage; callers mutate only after an allowed decision,
// inside the same transaction that loaded the task.
//
// Rules:
//   - read, update: creator or current assignee
//   - delete, assign, unassign: creator only
func Decide(actorID uint, task *models.Task, action Action) Decision {
	isCreator := task.IsCreator(actorID)
	isAssignee := task.HasAssignee(actorID)

	switch action {
	case ActionRead, ActionUpdate:
		if isCreator {
			return allow("actor is creator")
		}
		if isAssignee {
			return allow("actor is assignee")
		}
		return deny("actor is neither creator nor assignee")
	case ActionDelete, ActionAssign, ActionUnassign:
		if isCreator {
			return allow("actor is creator")
		}
		return deny("only the creator may " + string(action))
	default:
		return deny("unknown action " + string(action))
	}
}
