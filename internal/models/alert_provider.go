package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertProvider is an external chat-ops destination for abuse alerts.
// URL is a shoutrrr service URL (discord://, slack://, telegram://, ...).
type AlertProvider struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // discord, slack, gotify, telegram, generic
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`

	// Event preferences
	NotifySpam       bool `json:"notify_spam" gorm:"default:true"`
	NotifyModeration bool `json:"notify_moderation" gorm:"default:true"`
	NotifyRateLimit  bool `json:"notify_rate_limit" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *AlertProvider) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
