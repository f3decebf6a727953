package models

type Project struct {
	BaseModel

	Name        string `gorm:"not null"`
	Description string
	WorkspaceID uint `gorm:"not null;index"`
	CreatedBy   uint `gorm:"not null;index"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Creator   User      `gorm:"foreignKey:CreatedBy"`
	Tasks     []Task    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
