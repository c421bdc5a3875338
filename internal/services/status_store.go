package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/models"
)

var (
	ErrTeamNotFound   = errors.New("organization not found")
	ErrTeamIDRequired = errors.New("team id is required")
)

// StatusStore is the boundary to the external data store's status transition
// procedure. Implementations must make each transition atomic.
type StatusStore interface {
	// UpdateTeamStatus transitions a team, recording reason and actor.
	// expiresAt is only meaningful for timed suspensions.
	UpdateTeamStatus(teamID string, status models.TeamStatus, reason, actorID string, expiresAt *time.Time) error
	// GetTeam returns the team by its public id, or ErrTeamNotFound.
	GetTeam(teamID string) (*models.Team, error)
}

// GormStatusStore implements StatusStore over the local relational store.
// Each transition writes the team row and a moderation log entry in one
// transaction.
type GormStatusStore struct {
	db *gorm.DB
}

func NewGormStatusStore(db *gorm.DB) *GormStatusStore {
	return &GormStatusStore{db: db}
}

func (s *GormStatusStore) GetTeam(teamID string) (*models.Team, error) {
	var team models.Team
	if err := s.db.Where("uuid = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (s *GormStatusStore) UpdateTeamStatus(teamID string, status models.TeamStatus, reason, actorID string, expiresAt *time.Time) error {
	now := time.Now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Where("uuid = ?", teamID).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		team.Status = status
		team.StatusReason = reason
		team.ModeratedAt = &now
		team.ModeratedBy = actorID
		team.SuspendedUntil = nil
		if status == models.TeamStatusSuspended {
			team.SuspendedUntil = expiresAt
		}
		if err := tx.Save(&team).Error; err != nil {
			return err
		}

		entry := models.ModerationLog{
			UUID:   uuid.NewString(),
			TeamID: team.ID,
			Actor:  actorID,
			Action: string(status),
			Reason: reason,
		}
		return tx.Create(&entry).Error
	})
}
