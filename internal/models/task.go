package models

import "time"

const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"

	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func ValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'TODO'"`
	Priority    string `gorm:"not null;default:'MEDIUM'"`
	DueDate     *time.Time
	AssignedTo  *uint `gorm:"index"`
	ProjectID   uint  `gorm:"not null;index"`
	CreatedBy   uint  `gorm:"not null;index"`

	// Relationships
	Project  Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Creator  User      `gorm:"foreignKey:CreatedBy"`
	Assignee *User     `gorm:"foreignKey:AssignedTo"`
	Comments []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
