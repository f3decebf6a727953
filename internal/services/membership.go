package services

import (
	"errors"
	"slices"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// MembershipResolver answers the one question every domain operation asks:
// what role, if any, does this user hold in this workspace.
type MembershipResolver struct {
	conn *gorm.DB
}

func NewMembershipResolver(conn *gorm.DB) *MembershipResolver {
	return &MembershipResolver{conn: conn}
}

// Resolve returns the membership row, or nil when the user is not a member.
func (r *MembershipResolver) Resolve(userID, workspaceID uint) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember

	err := r.conn.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &member, nil
}

// RequireRole resolves the membership and enforces that its role is one of
// allowedRoles. The role sets are not hierarchical: an operation that names
// only OWNER is not satisfied by ADMIN.
func (r *MembershipResolver) RequireRole(userID, workspaceID uint, allowedRoles ...string) (*models.WorkspaceMember, error) {
	member, err := r.Resolve(userID, workspaceID)
	if err != nil {
		return nil, err
	}

	if member == nil {
		return nil, apperrors.Authorization("You are not a member of this workspace")
	}

	if !slices.Contains(allowedRoles, member.Role) {
		return nil, apperrors.Authorization("You do not have permission to perform this action")
	}

	return member, nil
}

// RequireMember enforces membership without caring about the role.
func (r *MembershipResolver) RequireMember(userID, workspaceID uint) (*models.WorkspaceMember, error) {
	return r.RequireRole(userID, workspaceID, models.RoleOwner, models.RoleAdmin, models.RoleMember)
}
