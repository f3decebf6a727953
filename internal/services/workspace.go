package services

import (
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/mailer"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

type WorkspaceService struct {
	conn    *gorm.DB
	members *MembershipResolver
	mail    *mailer.Mailer
}

func NewWorkspaceService(conn *gorm.DB, members *MembershipResolver, mail *mailer.Mailer) *WorkspaceService {
	return &WorkspaceService{conn: conn, members: members, mail: mail}
}

// WorkspaceWithRole is a workspace annotated with the caller's own role in it.
type WorkspaceWithRole struct {
	Workspace models.Workspace
	Role      string
}

// Create persists the workspace and its first OWNER membership in one
// transaction. A workspace must never exist without at least one OWNER.
func (s *WorkspaceService) Create(userID uint, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Workspace name is required")
	}

	workspace := models.Workspace{
		Name:    name,
		OwnerID: userID,
	}

	err := s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		member := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &workspace, nil
}

func (s *WorkspaceService) List(userID uint) ([]WorkspaceWithRole, error) {
	var memberships []models.WorkspaceMember

	err := s.conn.Preload("Workspace").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	workspaces := make([]WorkspaceWithRole, 0, len(memberships))
	for _, membership := range memberships {
		workspaces = append(workspaces, WorkspaceWithRole{
			Workspace: membership.Workspace,
			Role:      membership.Role,
		})
	}

	return workspaces, nil
}

func (s *WorkspaceService) Update(workspaceID, userID uint, name string) (*models.Workspace, error) {
	if _, err := s.members.RequireRole(userID, workspaceID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Workspace name is required")
	}

	var workspace models.Workspace
	if err := s.conn.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Workspace not found")
		}
		return nil, err
	}

	workspace.Name = name
	if err := s.conn.Save(&workspace).Error; err != nil {
		return nil, err
	}

	return &workspace, nil
}

// Delete requires the OWNER role specifically; ADMIN is not enough. The
// cascade (comments, tasks, projects, members, then the workspace) runs in a
// single transaction so a crash cannot leave dangling rows.
func (s *WorkspaceService) Delete(workspaceID, userID uint) error {
	if _, err := s.members.RequireRole(userID, workspaceID, models.RoleOwner); err != nil {
		return err
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).Where("workspace_id = ?", workspaceID).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			var taskIDs []uint
			if err := tx.Model(&models.Task{}).Where("project_id IN ?", projectIDs).Pluck("id", &taskIDs).Error; err != nil {
				return err
			}

			if len(taskIDs) > 0 {
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
					return err
				}
				if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Task{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Workspace{}, workspaceID).Error
	})
}

func (s *WorkspaceService) ListMembers(workspaceID, userID uint) ([]models.WorkspaceMember, error) {
	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	var members []models.WorkspaceMember
	err := s.conn.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// InviteMember adds an existing user to the workspace. The inviter must be
// OWNER or ADMIN; no further gate is applied to the granted role, so an ADMIN
// may grant OWNER (see DESIGN.md).
func (s *WorkspaceService) InviteMember(workspaceID, inviterID uint, email, role string) (*models.WorkspaceMember, error) {
	if _, err := s.members.RequireRole(inviterID, workspaceID, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("Email is required")
	}

	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) {
		return nil, apperrors.Validation("Invalid role")
	}

	var user models.User
	err := s.conn.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("No user found with that email")
		}
		return nil, err
	}

	existing, err := s.members.Resolve(user.ID, workspaceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("User is already a member of this workspace")
	}

	member := models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
	}

	if err := s.conn.Create(&member).Error; err != nil {
		// A concurrent invite for the same user lands here through the
		// composite unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("User is already a member of this workspace")
		}
		return nil, err
	}

	var workspace models.Workspace
	if err := s.conn.First(&workspace, workspaceID).Error; err == nil {
		s.mail.SendInvite(user, workspace.Name, role)
	}

	member.User = user
	return &member, nil
}

func (s *WorkspaceService) RemoveMember(workspaceID, removerID, memberUserID uint) error {
	if _, err := s.members.RequireRole(removerID, workspaceID, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}

	member, err := s.members.Resolve(memberUserID, workspaceID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperrors.NotFound("Member not found")
	}

	return s.conn.Delete(member).Error
}

// UpdateMemberRole requires the OWNER role specifically.
func (s *WorkspaceService) UpdateMemberRole(workspaceID, updaterID, memberUserID uint, newRole string) (*models.WorkspaceMember, error) {
	if _, err := s.members.RequireRole(updaterID, workspaceID, models.RoleOwner); err != nil {
		return nil, err
	}

	if !models.ValidRole(newRole) {
		return nil, apperrors.Validation("Invalid role")
	}

	member, err := s.members.Resolve(memberUserID, workspaceID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NotFound("Member not found")
	}

	member.Role = newRole
	if err := s.conn.Save(member).Error; err != nil {
		return nil, err
	}

	return member, nil
}

// DashboardSummary aggregates a workspace's project and task counts.
type DashboardSummary struct {
	ProjectCount int64 `json:"project_count"`
	TaskCount    int64 `json:"task_count"`
	TodoCount    int64 `json:"todo_count"`
	InProgress   int64 `json:"in_progress_count"`
	DoneCount    int64 `json:"done_count"`
	HighPriority int64 `json:"high_priority_count"`
	Overdue      int64 `json:"overdue_count"`
}

func (s *WorkspaceService) Dashboard(workspaceID, userID uint) (*DashboardSummary, error) {
	if _, err := s.members.RequireMember(userID, workspaceID); err != nil {
		return nil, err
	}

	var summary DashboardSummary

	err := s.conn.Model(&models.Project{}).
		Where("workspace_id = ?", workspaceID).
		Count(&summary.ProjectCount).Error
	if err != nil {
		return nil, err
	}

	tasks := func() *gorm.DB {
		return s.conn.Model(&models.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.workspace_id = ?", workspaceID)
	}

	counts := []struct {
		dest  *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&summary.TaskCount, func(q *gorm.DB) *gorm.DB { return q }},
		{&summary.TodoCount, func(q *gorm.DB) *gorm.DB { return q.Where("tasks.status = ?", models.TaskStatusTodo) }},
		{&summary.InProgress, func(q *gorm.DB) *gorm.DB { return q.Where("tasks.status = ?", models.TaskStatusInProgress) }},
		{&summary.DoneCount, func(q *gorm.DB) *gorm.DB { return q.Where("tasks.status = ?", models.TaskStatusDone) }},
		{&summary.HighPriority, func(q *gorm.DB) *gorm.DB { return q.Where("tasks.priority = ?", models.TaskPriorityHigh) }},
		{&summary.Overdue, func(q *gorm.DB) *gorm.DB {
			return q.Where("tasks.due_date IS NOT NULL AND tasks.due_date < CURRENT_TIMESTAMP AND tasks.status <> ?", models.TaskStatusDone)
		}},
	}

	for _, c := range counts {
		if err := c.scope(tasks()).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return &summary, nil
}
