package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EmailKindWelcome       = "welcome"
	EmailKindInvite        = "invite"
	EmailKindPasswordReset = "password_reset"

	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped"
)

// EmailNotification records one attempted outbound email. Delivery is
// best-effort, so these rows are the only trace of what was (not) sent.
type EmailNotification struct {
	BaseModel

	UserID    uint   `gorm:"not null;index"`
	Kind      string `gorm:"not null"`
	Recipient string `gorm:"not null"`
	Status    string `gorm:"not null"`
	Error     string
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	SentAt    *time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
