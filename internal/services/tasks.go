package services

import (
	"tareas-api/internal/models"
	"tareas-api/internal/stores"

	"gorm.io/gorm"
)

// ListCache caches per-user task lists. A nil ListCache disables caching.
type ListCache interface {
	GetList(userID uint) ([]models.Task, bool)
	SetList(userID uint, tasks []models.Task)
	Invalidate(userIDs ...uint)
}

// Notifier fans out assignment changes; delivery happens off the request
// path. A nil Notifier disables notifications.
type Notifier interface {
	TaskAssigned(task *models.Task, actorID uint, target *models.User)
	TaskUnassigned(task *models.Task, actorID uint, target *models.User)
}

type TaskService interface {
	Create(db *gorm.DB, actorID uint, titulo, descripcion string, completada bool) (*models.Task, error)
	Get(db *gorm.DB, actorID, taskID uint) (*models.Task, error)
	List(db *gorm.DB, actorID uint) ([]models.Task, error)
	Update(db *gorm.DB, actorID, taskID uint, titulo, descripcion string, completada bool) (*models.Task, error)
	Delete(db *gorm.DB, actorID, taskID uint) error
	Assign(db *gorm.DB, actorID, taskID uint, email string) (*models.Task, error)
	Unassign(db *gorm.DB, actorID, taskID uint, email string) (*models.Task, error)
}

type TaskServiceImpl struct {
	tasks    stores.TaskStore
	users    stores.UserStore
	cache    ListCache
	notifier Notifier
}

func NewTaskService(tasks stores.TaskStore, users stores.UserStore, cache ListCache, notifier Notifier) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, users: users, cache: cache, notifier: notifier}
}

func (s *TaskServiceImpl) Create(db *gorm.DB, actorID uint, titulo, descripcion string, completada bool) (*models.Task, error) {
	var task *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		creator, err := s.users.FindByID(tx, actorID)
		if err != nil {
			return err
		}
		task, err = s.tasks.Create(tx, titulo, descripcion, completada, creator)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFor(task)
	return task, nil
}

// Get applies the same creator-or-assignee scope as List. The original
// tutorial design skipped this check on single-task reads; that was an
// inconsistency, not a feature.
func (s *TaskServiceImpl) Get(db *gorm.DB, actorID, taskID uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(db, taskID)
	if err != nil {
		return nil, err
	}
	if d := Decide(actorID, task, ActionRead); !d.Allowed {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskServiceImpl) List(db *gorm.DB, actorID uint) ([]models.Task, error) {
	if s.cache != nil {
		if tasks, ok := s.cache.GetList(actorID); ok {
			return tasks, nil
		}
	}
	tasks, err := s.tasks.ListForUser(db, actorID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetList(actorID, tasks)
	}
	return tasks, nil
}

// Update overwrites the mutable fields. Creator and assignee set are
// untouched by design; the read, the permission check and the write run
// in one transaction.
func (s *TaskServiceImpl) Update(db *gorm.DB, actorID, taskID uint, titulo, descripcion string, completada bool) (*models.Task, error) {
	var updated *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := s.tasks.GetByID(tx, taskID)
		if err != nil {
			return err
		}
		if d := Decide(actorID, task, ActionUpdate); !d.Allowed {
			return ErrForbidden
		}
		updated, err = s.tasks.Update(tx, task, titulo, descripcion, completada)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFor(updated)
	return updated, nil
}

func (s *TaskServiceImpl) Delete(db *gorm.DB, actorID, taskID uint) error {
	var deleted *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := s.tasks.GetByID(tx, taskID)
		if err != nil {
			return err
		}
		if d := Decide(actorID, task, ActionDelete); !d.Allowed {
			return ErrForbidden
		}
		deleted = task
		return s.tasks.Delete(tx, task)
	})
	if err != nil {
		return err
	}
	s.invalidateFor(deleted)
	return nil
}

func (s *TaskServiceImpl) Assign(db *gorm.DB, actorID, taskID uint, email string) (*models.Task, error) {
	var (
		updated *models.Task
		target  *models.User
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := s.tasks.GetByID(tx, taskID)
		if err != nil {
			return err
		}
		if d := Decide(actorID, task, ActionAssign); !d.Allowed {
			return ErrForbidden
		}
		target, err = s.users.FindByEmail(tx, email)
		if err != nil {
			return err
		}
		updated, err = s.tasks.AddAssignee(tx, task, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFor(updated)
	if s.notifier != nil {
		s.notifier.TaskAssigned(updated, actorID, target)
	}
	return updated, nil
}

func (s *TaskServiceImpl) Unassign(db *gorm.DB, actorID, taskID uint, email string) (*models.Task, error) {
	var (
		updated *models.Task
		target  *models.User
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := s.tasks.GetByID(tx, taskID)
		if err != nil {
			return err
		}
		if d := Decide(actorID, task, ActionUnassign); !d.Allowed {
			return ErrForbidden
		}
		target, err = s.users.FindByEmail(tx, email)
		if err != nil {
			return err
		}
		if target.ID == task.CreatorID {
			return ErrCannotUnassignCreator
		}
		updated, err = s.tasks.RemoveAssignee(tx, task, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateFor(updated)
	if s.cache != nil {
		// The removed assignee is no longer on the task, so invalidateFor
		// missed them; their visible set shrank all the same.
		s.cache.Invalidate(target.ID)
	}
	if s.notifier != nil {
		s.notifier.TaskUnassigned(updated, actorID, target)
	}
	return updated, nil
}

// invalidateFor drops the cached lists of every user whose visible set
// may have changed: the creator and all current assignees.
func (s *TaskServiceImpl) invalidateFor(task *models.Task) {
	if s.cache == nil || task == nil {
		return
	}
	ids := []uint{task.CreatorID}
	for _, u := range task.Assignees {
		if u.ID != task.CreatorID {
			ids = append(ids, u.ID)
		}
	}
	s.cache.Invalidate(ids...)
}
