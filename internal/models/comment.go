package models

type Comment struct {
	BaseModel

	TaskID    uint   `gorm:"not null;index"`
	Content   string `gorm:"not null"`
	CreatedBy uint   `gorm:"not null;index"`

	// Relationships
	Task   Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:CreatedBy"`
}
