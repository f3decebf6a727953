package models

const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// ValidRole reports whether role is one of the three workspace roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

type WorkspaceMember struct {
	BaseModel

	WorkspaceID uint   `gorm:"not null;uniqueIndex:idx_workspace_user"`
	UserID      uint   `gorm:"not null;uniqueIndex:idx_workspace_user"`
	Role        string `gorm:"not null"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
