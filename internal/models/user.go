package models

import (
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	// Tasks this user originated; distinct from the assignee relation.
	CreatedTasks []Task `json:"-" gorm:"foreignKey:CreatorID"`
	// Tasks this user is assigned to. Includes every task it created,
	// since the creator is auto-assigned at creation.
	AssignedTasks []Task `json:"-" gorm:"many2many:task_assignees;"`
}
