package models

import "time"

type User struct {
	BaseModel

	Name             string
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	ResetToken       *string
	ResetTokenExpiry *time.Time

	// Relationships
	WorkspaceMemberships []WorkspaceMember   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	OwnedWorkspaces      []Workspace         `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	EmailNotifications   []EmailNotification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
