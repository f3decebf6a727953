package services

import (
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

type ProjectService struct {
	conn    *gorm.DB
	members *MembershipResolver
}

func NewProjectService(conn *gorm.DB, members *MembershipResolver) *ProjectService {
	return &ProjectService{conn: conn, members: members}
}

// Create is open to every workspace member regardless of role.
func (s *ProjectService) Create(userID, workspaceID uint, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Project name is required")
	}

	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
	}

	if err := s.conn.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *ProjectService) List(workspaceID, userID uint) ([]models.Project, error) {
	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	var projects []models.Project
	err := s.conn.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (s *ProjectService) Update(workspaceID, projectID, userID uint, name string, description *string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Project name is required")
	}

	if _, err := s.members.RequireRole(userID, workspaceID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	project, err := s.findInWorkspace(workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	project.Name = name
	if description != nil {
		project.Description = strings.TrimSpace(*description)
	}

	if err := s.conn.Save(project).Error; err != nil {
		return nil, err
	}

	return project, nil
}

// Delete cascades to the project's tasks and their comments in one
// transaction; tasks are unreachable through the API without their project,
// so orphaning them would only leak rows.
func (s *ProjectService) Delete(workspaceID, projectID, userID uint) error {
	if _, err := s.members.RequireRole(userID, workspaceID, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}

	project, err := s.findInWorkspace(workspaceID, projectID)
	if err != nil {
		return err
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(project).Error
	})
}

func (s *ProjectService) findInWorkspace(workspaceID, projectID uint) (*models.Project, error) {
	var project models.Project

	err := s.conn.Where("id = ? AND workspace_id = ?", projectID, workspaceID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, err
	}

	return &project, nil
}
