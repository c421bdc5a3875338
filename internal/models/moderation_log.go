package models

import (
	"time"
)

// ModerationLog records admin actions and automated transitions on teams.
type ModerationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	TeamID    uint      `json:"team_id" gorm:"index"`
	Actor     string    `json:"actor"` // acting admin UUID, or "system"
	Action    string    `json:"action"`
	Reason    string    `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
