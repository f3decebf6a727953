package models

type Workspace struct {
	BaseModel

	Name    string `gorm:"not null"`
	OwnerID uint   `gorm:"not null;index"`

	// Relationships
	Owner    User              `gorm:"foreignKey:OwnerID"`
	Members  []WorkspaceMember `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Projects []Project         `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
