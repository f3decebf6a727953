package services

import (
	"errors"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

type TaskService struct {
	conn    *gorm.DB
	members *MembershipResolver
}

func NewTaskService(conn *gorm.DB, members *MembershipResolver) *TaskService {
	return &TaskService{conn: conn, members: members}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssignedTo  *uint
}

// UpdateTaskInput carries a partial update: unset fields are left untouched,
// and the Optional fields clear their column when set to an explicit null.
type UpdateTaskInput struct {
	Title       *string
	Status      *string
	Priority    *string
	Description types.Optional[string]
	DueDate     types.Optional[time.Time]
	AssignedTo  types.Optional[uint]
}

func (s *TaskService) Create(userID, workspaceID, projectID uint, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.Validation("Task title is required")
	}

	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	if err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(status) {
		return nil, apperrors.Validation("Invalid task status")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(priority) {
		return nil, apperrors.Validation("Invalid task priority")
	}

	if input.AssignedTo != nil {
		if err := s.requireAssignee(*input.AssignedTo, workspaceID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		AssignedTo:  input.AssignedTo,
		ProjectID:   projectID,
		CreatedBy:   userID,
	}

	if err := s.conn.Create(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) List(workspaceID, projectID, userID uint) ([]models.Task, error) {
	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	if err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := s.conn.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update is open to every workspace member; only Delete is restricted to the
// creator and elevated roles. That asymmetry is intentional.
func (s *TaskService) Update(workspaceID, projectID, taskID, userID uint, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.Validation("Task title is required")
	}

	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	if err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, apperrors.Validation("Invalid task status")
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, apperrors.Validation("Invalid task priority")
		}
		task.Priority = *input.Priority
	}
	if input.Description.Set {
		if input.Description.Value != nil {
			task.Description = strings.TrimSpace(*input.Description.Value)
		} else {
			task.Description = ""
		}
	}
	if input.DueDate.Set {
		task.DueDate = input.DueDate.Value
	}
	if input.AssignedTo.Set {
		if input.AssignedTo.Value != nil {
			if err := s.requireAssignee(*input.AssignedTo.Value, workspaceID); err != nil {
				return nil, err
			}
		}
		task.AssignedTo = input.AssignedTo.Value
	}

	// Save skips nil pointer columns, so cleared fields are written
	// explicitly through Select.
	err = s.conn.Model(task).
		Select("title", "description", "status", "priority", "due_date", "assigned_to").
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"due_date":    task.DueDate,
			"assigned_to": task.AssignedTo,
		}).Error
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Delete is allowed for the task's creator and for workspace OWNER/ADMIN.
func (s *TaskService) Delete(workspaceID, projectID, taskID, userID uint) error {
	membership, err := s.members.RequireMember(userID, workspaceID)
	if err != nil {
		return err
	}

	if err := s.requireProject(workspaceID, projectID); err != nil {
		return err
	}

	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return err
	}

	elevated := membership.Role == models.RoleOwner || membership.Role == models.RoleAdmin
	if task.CreatedBy != userID && !elevated {
		return apperrors.Authorization("Only the task creator or a workspace admin can delete this task")
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

func (s *TaskService) requireProject(workspaceID, projectID uint) error {
	var count int64
	err := s.conn.Model(&models.Project{}).
		Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("Project not found")
	}
	return nil
}

func (s *TaskService) requireAssignee(assigneeID, workspaceID uint) error {
	member, err := s.members.Resolve(assigneeID, workspaceID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperrors.Validation("Assignee is not a member of this workspace")
	}
	return nil
}

func (s *TaskService) findInProject(projectID, taskID uint) (*models.Task, error) {
	var task models.Task

	err := s.conn.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, err
	}

	return &task, nil
}
