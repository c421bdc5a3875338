package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/logger"
	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/spamcheck"
	"github.com/teamspace/guardrail/internal/util"
)

var (
	ErrTeamNameBlocked = errors.New("organization name was rejected")
	ErrTeamSuspended   = errors.New("organization is suspended")
	ErrNotTeamOwner    = errors.New("only the organization owner can do this")
)

// TeamService covers organization creation and invitations beyond signup.
// Both paths are rate limited at the transport layer; this layer runs the
// same name guard registration does.
type TeamService struct {
	db       *gorm.DB
	detector *spamcheck.Detector
}

func NewTeamService(db *gorm.DB, detector *spamcheck.Detector) *TeamService {
	return &TeamService{db: db, detector: detector}
}

// CreateTeam creates an additional organization for an existing user. Names
// that would be blocked at signup are blocked here too; merely suspicious
// names go through flagged so they land on the moderation dashboard.
func (s *TeamService) CreateTeam(owner *models.User, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	check := s.detector.Detect(name)

	if s.detector.IsHighRisk(name) || check.Score > spamcheck.BlockThreshold {
		metrics.IncSignupBlocked()
		logger.WithFields(map[string]interface{}{
			"team_name": util.SanitizeForLog(name),
			"owner":     owner.Email,
			"score":     check.Score,
			"reasons":   check.Reasons,
		}).Error("organization creation blocked as spam")
		return nil, ErrTeamNameBlocked
	}

	team := models.Team{
		UUID:    uuid.NewString(),
		Name:    name,
		OwnerID: owner.ID,
		Status:  models.TeamStatusActive,
	}
	if check.IsSpam {
		team.Status = models.TeamStatusFlagged
		team.StatusReason = "Auto-flagged: " + strings.Join(check.Reasons, "; ")
		metrics.IncAutoFlag()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Team{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrTeamNameExists
		}
		return tx.Create(&team).Error
	})
	if err != nil {
		return nil, err
	}

	if check.IsSpam {
		logger.WithFields(map[string]interface{}{
			"team_name": util.SanitizeForLog(name),
			"owner":     owner.Email,
			"score":     check.Score,
		}).Warn("new organization created flagged")
	}

	return &team, nil
}

// Invite records an invitation for email to join the team identified by
// teamID. Suspended and flagged organizations cannot invite.
func (s *TeamService) Invite(inviter *models.User, teamID, email string) (*models.Invitation, error) {
	var team models.Team
	if err := s.db.Where("uuid = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if team.OwnerID != inviter.ID && !inviter.IsAdmin() {
		return nil, ErrNotTeamOwner
	}
	if team.Status != models.TeamStatusActive {
		return nil, ErrTeamSuspended
	}

	invitation := models.Invitation{
		UUID:      uuid.NewString(),
		TeamID:    team.ID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		InvitedBy: inviter.UUID,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"team":  team.Name,
		"email": invitation.Email,
	}).Info("invitation sent")

	return &invitation, nil
}
