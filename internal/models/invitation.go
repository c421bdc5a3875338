package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation is a pending request for a user to join a team.
type Invitation struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UUID      string    `json:"id" gorm:"uniqueIndex"`
	TeamID    uint      `json:"-" gorm:"index"`
	Team      Team      `json:"-"`
	Email     string    `json:"email" gorm:"index"`
	InvitedBy string    `json:"invited_by"` // inviter UUID
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.NewString()
	}
	return nil
}
