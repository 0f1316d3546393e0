package models

import (
	"time"
)

type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Titulo      string    `json:"titulo" gorm:"not null"`
	Descripcion string    `json:"descripcion"`
	Completada  bool      `json:"completada" gorm:"not null;default:false"`
	CreatorID   uint      `json:"creator_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Assignees []User `json:"assignees,omitempty" gorm:"many2many:task_assignees;"`
}

func (t *Task) IsCreator(userID uint) bool {
	return t.CreatorID == userID
}

func (t *Task) HasAssignee(userID uint) bool {
	for _, u := range t.Assignees {
		if u.ID == userID {
			return true
		}
	}
	return false
}
