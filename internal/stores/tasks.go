package stores

import (
	"errors"

	"tareas-api/internal/models"

	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskStore interface {
	Create(db *gorm.DB, titulo, descripcion string, completada bool, creator *models.User) (*models.Task, error)
	GetByID(db *gorm.DB, id uint) (*models.Task, error)
	ListForUser(db *gorm.DB, userID uint) ([]models.Task, error)
	Update(db *gorm.DB, task *models.Task, titulo, descripcion string, completada bool) (*models.Task, error)
	Delete(db *gorm.DB, task *models.Task) error
	AddAssignee(db *gorm.DB, task *models.Task, user *models.User) (*models.Task, error)
	RemoveAssignee(db *gorm.DB, task *models.Task, user *models.User) (*models.Task, error)
}

type TaskStoreImpl struct{}

func NewTaskStore() *TaskStoreImpl {
	return &TaskStoreImpl{}
}

// Create persists the task and puts the creator into the assignee set in
// the same unit of work, so a freshly created task is never observable
// without its creator assigned.
func (s *TaskStoreImpl) Create(db *gorm.DB, titulo, descripcion string, completada bool, creator *models.User) (*models.Task, error) {
	task := models.Task{
		Titulo:      titulo,
		Descripcion: descripcion,
		Completada:  completada,
		CreatorID:   creator.ID,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&task).Association("Assignees").Append(creator); err != nil {
		return nil, err
	}
	return s.GetByID(db, task.ID)
}

func (s *TaskStoreImpl) GetByID(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.Preload("Assignees").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListForUser returns the union of tasks the user created and tasks the
// user is assigned to, in ascending id order. The assignee side goes
// through a subquery so a task matching both conditions comes back once.
func (s *TaskStoreImpl) ListForUser(db *gorm.DB, userID uint) ([]models.Task, error) {
	assigned := db.Table("task_assignees").
		Select("task_id").
		Where("user_id = ?", userID)

	tasks := make([]models.Task, 0)
	err := db.Preload("Assignees").
		Where("creator_id = ? OR id IN (?)", userID, assigned).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStoreImpl) Update(db *gorm.DB, task *models.Task, titulo, descripcion string, completada bool) (*models.Task, error) {
	updates := map[string]interface{}{
		"titulo":      titulo,
		"descripcion": descripcion,
		"completada":  completada,
	}
	if err := db.Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(db, task.ID)
}

func (s *TaskStoreImpl) Delete(db *gorm.DB, task *models.Task) error {
	if err := db.Model(task).Association("Assignees").Clear(); err != nil {
		return err
	}
	return db.Delete(task).Error
}

// AddAssignee is idempotent: appending a user already in the set leaves
// the set unchanged and reports success.
func (s *TaskStoreImpl) AddAssignee(db *gorm.DB, task *models.Task, user *models.User) (*models.Task, error) {
	if !task.HasAssignee(user.ID) {
		if err := db.Model(task).Association("Assignees").Append(user); err != nil {
			return nil, err
		}
	}
	return s.GetByID(db, task.ID)
}

// RemoveAssignee is idempotent and never removes the creator, regardless
// of what the caller asked for. The authorization engine rejects creator
// unassignment with an error before this runs; the store-level guard
// keeps the invariant even for callers that skip the engine.
func (s *TaskStoreImpl) RemoveAssignee(db *gorm.DB, task *models.Task, user *models.User) (*models.Task, error) {
	if user.ID != task.CreatorID && task.HasAssignee(user.ID) {
		if err := db.Model(task).Association("Assignees").Delete(user); err != nil {
			return nil, err
		}
	}
	return s.GetByID(db, task.ID)
}
