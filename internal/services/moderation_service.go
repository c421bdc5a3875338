package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/logger"
	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/ratelimit"
	"github.com/teamspace/guardrail/internal/spamcheck"
)

// Default transition reasons when the admin does not supply one.
const (
	defaultFlagReason    = "Spam/Abuse"
	defaultSuspendReason = "Terms of Service Violation"
	restoreReason        = "Manually restored by admin"
)

// Scan windows over team creation time.
const (
	scanWindow     = 7 * 24 * time.Hour
	bulkScanWindow = 30 * 24 * time.Hour
	bulkScanCap    = 1000
	dashboardCap   = 100
)

// ModerationService drives the organization moderation state machine:
// active <-> flagged <-> suspended, plus restore back to active.
// Authorization is enforced at the HTTP layer before any call lands here.
type ModerationService struct {
	db       *gorm.DB
	store    StatusStore
	detector *spamcheck.Detector
	limiter  *ratelimit.Limiter
	alerts   *AlertService
}

func NewModerationService(db *gorm.DB, store StatusStore, detector *spamcheck.Detector, limiter *ratelimit.Limiter, alerts *AlertService) *ModerationService {
	return &ModerationService{db: db, store: store, detector: detector, limiter: limiter, alerts: alerts}
}

// TeamRef is the minimal projection returned from status transitions.
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FlaggedTeam is a dashboard row with a fresh risk overlay. The stored
// moderation reason is not recomputed; only the live signal is added.
type FlaggedTeam struct {
	ID               string     `json:"id"`
	OrganizationName string     `json:"organization_name"`
	OwnerName        string     `json:"owner_name"`
	OwnerEmail       string     `json:"owner_email"`
	Status           string     `json:"status"`
	StatusReason     string     `json:"status_reason"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	OrgSpamScore     int        `json:"org_spam_score"`
	OrgSpamReasons   []string   `json:"org_spam_reasons"`
	OwnerSpamScore   int        `json:"owner_spam_score"`
	OwnerSpamReasons []string   `json:"owner_spam_reasons"`
	IsHighRisk       bool       `json:"is_high_risk"`
}

// teamRow is the denormalized team+owner projection used by scans.
type teamRow struct {
	UUID         string
	Name         string
	Status       string
	StatusReason string
	ModeratedAt  *time.Time
	CreatedAt    time.Time
	OwnerName    string
	OwnerEmail   string
}

func (s *ModerationService) teamQuery() *gorm.DB {
	return s.db.Table("teams").
		Select("teams.uuid, teams.name, teams.status, teams.status_reason, teams.moderated_at, teams.created_at, users.name as owner_name, users.email as owner_email").
		Joins("INNER JOIN users ON users.id = teams.owner_id")
}

// FlaggedDashboard lists recently moderated organizations, newest first,
// with a fresh scorer overlay on the stored names.
func (s *ModerationService) FlaggedDashboard() ([]FlaggedTeam, error) {
	var rows []teamRow
	if err := s.teamQuery().
		Where("teams.status <> ?", models.TeamStatusActive).
		Order("teams.moderated_at DESC").
		Limit(dashboardCap).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]FlaggedTeam, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.annotate(row))
	}
	return out, nil
}

func (s *ModerationService) annotate(row teamRow) FlaggedTeam {
	orgCheck := s.detector.Detect(row.Name)
	ownerCheck := s.detector.Detect(row.OwnerName)

	return FlaggedTeam{
		ID:               row.UUID,
		OrganizationName: row.Name,
		OwnerName:        row.OwnerName,
		OwnerEmail:       row.OwnerEmail,
		Status:           row.Status,
		StatusReason:     row.StatusReason,
		ModeratedAt:      row.ModeratedAt,
		CreatedAt:        row.CreatedAt,
		OrgSpamScore:     orgCheck.Score,
		OrgSpamReasons:   orgCheck.Reasons,
		OwnerSpamScore:   ownerCheck.Score,
		OwnerSpamReasons: ownerCheck.Reasons,
		IsHighRisk:       s.detector.IsHighRisk(row.Name) || s.detector.IsHighRisk(row.OwnerName),
	}
}

// Flag marks an organization as flagged. Existence is verified before the
// transition so not-found strictly precedes any mutation.
func (s *ModerationService) Flag(teamID, reason, actorID string) (*TeamRef, error) {
	return s.transition(teamID, models.TeamStatusFlagged, orDefault(reason, defaultFlagReason), actorID, nil)
}

// Suspend marks an organization as suspended, optionally until expiresAt.
func (s *ModerationService) Suspend(teamID, reason, actorID string, expiresAt *time.Time) (*TeamRef, error) {
	return s.transition(teamID, models.TeamStatusSuspended, orDefault(reason, defaultSuspendReason), actorID, expiresAt)
}

// Unsuspend restores an organization to active.
func (s *ModerationService) Unsuspend(teamID, actorID string) (*TeamRef, error) {
	return s.transition(teamID, models.TeamStatusActive, restoreReason, actorID, nil)
}

func (s *ModerationService) transition(teamID string, status models.TeamStatus, reason, actorID string, expiresAt *time.Time) (*TeamRef, error) {
	if teamID == "" {
		return nil, ErrTeamIDRequired
	}

	team, err := s.store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateTeamStatus(teamID, status, reason, actorID, expiresAt); err != nil {
		return nil, err
	}

	if s.alerts != nil {
		s.alerts.Send(AlertEventModeration,
			fmt.Sprintf("organization %s", status),
			fmt.Sprintf("team=%s reason=%s actor=%s", team.Name, reason, actorID))
	}

	return &TeamRef{ID: team.UUID, Name: team.Name}, nil
}

// ScanReport is the result of a read-only triage scan.
type ScanReport struct {
	TotalScanned    int           `json:"total_scanned"`
	SuspiciousCount int           `json:"suspicious_count"`
	SuspiciousTeams []FlaggedTeam `json:"suspicious_teams"`
}

// ScanForSpam scores organizations created in the last 7 days that are still
// active and returns the suspicious ones. It never mutates state.
func (s *ModerationService) ScanForSpam() (*ScanReport, error) {
	var rows []teamRow
	if err := s.teamQuery().
		Where("teams.status = ?", models.TeamStatusActive).
		Where("teams.created_at > ?", time.Now().Add(-scanWindow)).
		Order("teams.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	report := &ScanReport{TotalScanned: len(rows), SuspiciousTeams: []FlaggedTeam{}}
	for _, row := range rows {
		annotated := s.annotate(row)
		if annotated.OrgSpamScore >= spamcheck.SpamThreshold ||
			annotated.OwnerSpamScore >= spamcheck.SpamThreshold ||
			annotated.IsHighRisk {
			report.SuspiciousTeams = append(report.SuspiciousTeams, annotated)
		}
	}
	report.SuspiciousCount = len(report.SuspiciousTeams)
	return report, nil
}

// BulkScanTeam is one row of a bulk scan result.
type BulkScanTeam struct {
	ID               string   `json:"id"`
	OrganizationName string   `json:"organization_name"`
	OwnerName        string   `json:"owner_name"`
	Action           string   `json:"action"` // auto_flagged or review_needed
	OrgSpamScore     int      `json:"org_spam_score"`
	OwnerSpamScore   int      `json:"owner_spam_score"`
	Reasons          []string `json:"reasons"`
}

// BulkScanReport summarizes a bulk scan run.
type BulkScanReport struct {
	TotalScanned int            `json:"total_scanned"`
	AutoFlagged  int            `json:"auto_flagged"`
	NeedsReview  int            `json:"needs_review"`
	Teams        []BulkScanTeam `json:"teams"`
}

// BulkScanAndFlag scores active organizations created in the last 30 days
// (capped at 1000). With autoFlag set, high-confidence hits (score above the
// auto-flag threshold on either name, or a high-risk signal) are flagged with
// a synthesized reason; merely suspicious rows are queued for review without
// mutation.
func (s *ModerationService) BulkScanAndFlag(autoFlag bool, actorID string) (*BulkScanReport, error) {
	var rows []teamRow
	if err := s.teamQuery().
		Where("teams.status = ?", models.TeamStatusActive).
		Where("teams.created_at > ?", time.Now().Add(-bulkScanWindow)).
		Limit(bulkScanCap).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	report := &BulkScanReport{TotalScanned: len(rows), Teams: []BulkScanTeam{}}
	for _, row := range rows {
		orgCheck := s.detector.Detect(row.Name)
		ownerCheck := s.detector.Detect(row.OwnerName)
		isHighRisk := s.detector.IsHighRisk(row.Name) || s.detector.IsHighRisk(row.OwnerName)

		highConfidence := orgCheck.Score > spamcheck.AutoFlagThreshold ||
			ownerCheck.Score > spamcheck.AutoFlagThreshold ||
			isHighRisk

		switch {
		case highConfidence && autoFlag:
			reasons := append([]string{}, orgCheck.Reasons...)
			reasons = append(reasons, ownerCheck.Reasons...)
			if isHighRisk {
				reasons = append(reasons, "High-risk content detected")
			}

			reason := "Auto-flagged: " + strings.Join(reasons, ", ")
			if err := s.store.UpdateTeamStatus(row.UUID, models.TeamStatusFlagged, reason, actorID, nil); err != nil {
				logger.Log().WithError(err).WithField("team", row.UUID).Error("bulk scan failed to flag team")
				continue
			}
			metrics.IncAutoFlag()

			report.Teams = append(report.Teams, BulkScanTeam{
				ID:               row.UUID,
				OrganizationName: row.Name,
				OwnerName:        row.OwnerName,
				Action:           models.DispositionAutoFlagged,
				OrgSpamScore:     orgCheck.Score,
				OwnerSpamScore:   ownerCheck.Score,
				Reasons:          reasons,
			})

		case orgCheck.IsSpam || ownerCheck.IsSpam || isHighRisk:
			reasons := append([]string{}, orgCheck.Reasons...)
			reasons = append(reasons, ownerCheck.Reasons...)
			if isHighRisk {
				reasons = append(reasons, "High-risk content")
			}

			report.Teams = append(report.Teams, BulkScanTeam{
				ID:               row.UUID,
				OrganizationName: row.Name,
				OwnerName:        row.OwnerName,
				Action:           models.DispositionReviewNeeded,
				OrgSpamScore:     orgCheck.Score,
				OwnerSpamScore:   ownerCheck.Score,
				Reasons:          reasons,
			})
		}
	}

	for _, team := range report.Teams {
		if team.Action == models.DispositionAutoFlagged {
			report.AutoFlagged++
		} else {
			report.NeedsReview++
		}
	}
	return report, nil
}

// Stats aggregates moderation counts plus the requesting admin's own
// rate-limit usage for operational visibility.
type Stats struct {
	FlaggedCount   int64           `json:"flagged_count"`
	SuspendedCount int64           `json:"suspended_count"`
	NewTeams24h    int64           `json:"new_teams_24h"`
	NewTeams7d     int64           `json:"new_teams_7d"`
	RateLimitStats ratelimit.Stats `json:"rate_limit_stats"`
}

func (s *ModerationService) Stats(actorIdentifier string) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.Model(&models.Team{}).Where("status = ?", models.TeamStatusFlagged).Count(&stats.FlaggedCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Team{}).Where("status = ?", models.TeamStatusSuspended).Count(&stats.SuspendedCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Team{}).Where("created_at > ?", time.Now().Add(-24*time.Hour)).Count(&stats.NewTeams24h).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Team{}).Where("created_at > ?", time.Now().Add(-7*24*time.Hour)).Count(&stats.NewTeams7d).Error; err != nil {
		return nil, err
	}

	stats.RateLimitStats = s.limiter.Stats(actorIdentifier)
	return stats, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
