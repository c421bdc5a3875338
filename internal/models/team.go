package models

import (
	"time"
)

// TeamStatus enumerates the moderation states an organization can be in.
type TeamStatus string

const (
	TeamStatusActive    TeamStatus = "active"
	TeamStatusFlagged   TeamStatus = "flagged"
	TeamStatusSuspended TeamStatus = "suspended"
)

// Team represents an organization/workspace owned by a user.
// Moderation state lives directly on the record; transitions go through
// services.StatusStore so every change carries a reason and an actor.
type Team struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UUID         string     `json:"uuid" gorm:"uniqueIndex"`
	Name         string     `json:"name"`
	OwnerID      uint       `json:"owner_id" gorm:"index"`
	Owner        User       `json:"-" gorm:"foreignKey:OwnerID"`
	Status       TeamStatus `json:"status" gorm:"default:'active';index"`
	StatusReason string     `json:"status_reason,omitempty"`
	// SuspendedUntil is set for timed suspensions; nil means indefinite.
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	ModeratedAt    *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy    string     `json:"moderated_by,omitempty"` // actor UUID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
