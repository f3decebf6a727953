package models

import "time"

// BaseModel is gorm.Model without soft deletes. Rows in this schema are
// removed for real: a deleted membership must not shadow a later re-invite
// through the composite unique index.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
