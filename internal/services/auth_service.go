package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/config"
	"github.com/teamspace/guardrail/internal/logger"
	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/spamcheck"
	"github.com/teamspace/guardrail/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrTeamNameExists     = errors.New("team name already taken")
	// ErrRegistrationBlocked is deliberately generic: it must not reveal
	// detection internals to the caller.
	ErrRegistrationBlocked = errors.New("registration is temporarily unavailable, please contact support")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// WelcomeSender delivers the post-registration welcome notification.
// Calls are fire-and-forget; registration never waits on the result.
type WelcomeSender interface {
	SendWelcome(user models.User)
}

// LogWelcomeSender is the default WelcomeSender; real mail delivery is an
// external collaborator.
type LogWelcomeSender struct{}

func (LogWelcomeSender) SendWelcome(user models.User) {
	logger.WithFields(map[string]interface{}{"email": user.Email}).Info("welcome notification sent")
}

// Obvious-scam text: shortened-URL domains or win-money-crypto phrasing.
// Together with a block-level score this turns a high-risk signal into a
// hard block instead of a review flag.
var obviousScamRe = regexp.MustCompile(`(?i)bit\.ly|tinyurl\.com|gclnk\.com|win.*\$.*crypto`)

// AuthService handles registration, login and session tokens. Registration
// runs the signup-time guard: names are scored before the user is created.
type AuthService struct {
	db       *gorm.DB
	cfg      config.Config
	detector *spamcheck.Detector
	welcome  WelcomeSender
}

func NewAuthService(db *gorm.DB, cfg config.Config, detector *spamcheck.Detector, welcome WelcomeSender) *AuthService {
	if welcome == nil {
		welcome = LogWelcomeSender{}
	}
	return &AuthService{db: db, cfg: cfg, detector: detector, welcome: welcome}
}

// RegisterInput is the registration payload after field validation.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	TeamName string
}

// Register creates a user and their organization, guarded by the scorer.
// The guard runs after field validation and before any row is written.
func (s *AuthService) Register(input RegisterInput) (*models.User, *models.Team, error) {
	orgCheck := s.detector.Detect(input.TeamName)
	ownerCheck := s.detector.Detect(input.Name)

	if orgCheck.Score > 0 || len(orgCheck.Reasons) > 0 {
		logger.WithFields(map[string]interface{}{
			"field":   "team_name",
			"value":   util.SanitizeForLog(input.TeamName),
			"score":   orgCheck.Score,
			"reasons": orgCheck.Reasons,
		}).Warn("suspicious signup flagged")
	}
	if ownerCheck.Score > 0 || len(ownerCheck.Reasons) > 0 {
		logger.WithFields(map[string]interface{}{
			"field":   "name",
			"value":   util.SanitizeForLog(input.Name),
			"score":   ownerCheck.Score,
			"reasons": ownerCheck.Reasons,
		}).Warn("suspicious signup flagged")
	}

	if s.detector.IsHighRisk(input.TeamName) || s.detector.IsHighRisk(input.Name) {
		obvious := orgCheck.Score > spamcheck.BlockThreshold ||
			ownerCheck.Score > spamcheck.BlockThreshold ||
			obviousScamRe.MatchString(input.TeamName) ||
			obviousScamRe.MatchString(input.Name)

		fields := map[string]interface{}{
			"team_name":   util.SanitizeForLog(input.TeamName),
			"owner_name":  util.SanitizeForLog(input.Name),
			"org_score":   orgCheck.Score,
			"owner_score": ownerCheck.Score,
			"reasons":     append(orgCheck.Reasons, ownerCheck.Reasons...),
		}

		if obvious {
			metrics.IncSignupBlocked()
			logger.WithFields(fields).Error("signup blocked as obvious spam")
			return nil, nil, ErrRegistrationBlocked
		}

		// High-risk but ambiguous: let it through, demand eyes on it.
		logger.WithFields(fields).Error("signup flagged for immediate review")
	}

	user, team, err := s.createUserAndTeam(input)
	if err != nil {
		return nil, nil, err
	}

	if combined := orgCheck.Score + ownerCheck.Score; combined > 0 {
		s.writeSpamAudit(input, combined, orgCheck.Reasons, ownerCheck.Reasons)
	}

	go s.welcome.SendWelcome(*user)

	return user, team, nil
}

func (s *AuthService) createUserAndTeam(input RegisterInput) (*models.User, *models.Team, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	role := "user"
	if count == 0 {
		role = "admin"
	}

	user := models.User{
		UUID:    uuid.NewString(),
		Email:   email,
		Name:    input.Name,
		Role:    role,
		Enabled: true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, nil, err
	}

	team := models.Team{
		UUID:   uuid.NewString(),
		Name:   input.TeamName,
		Status: models.TeamStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrEmailExists
		}

		if err := tx.Model(&models.Team{}).Where("name = ?", input.TeamName).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrTeamNameExists
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		team.OwnerID = user.ID
		return tx.Create(&team).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &user, &team, nil
}

// writeSpamAudit records the flagged signup for async admin review.
// Best-effort: failures are logged and swallowed, never propagated.
func (s *AuthService) writeSpamAudit(input RegisterInput, combined int, orgReasons, ownerReasons []string) {
	reasons := append(append([]string{}, orgReasons...), ownerReasons...)
	seen := make(map[string]struct{}, len(reasons))
	deduped := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		deduped = append(deduped, r)
	}

	// Names are sanitized for storage; scoring above always saw the raw text.
	audit := models.SpamAudit{
		UUID:        uuid.NewString(),
		OrgName:     spamcheck.Sanitize(input.TeamName),
		OwnerName:   spamcheck.Sanitize(input.Name),
		Score:       combined,
		Reasons:     strings.Join(deduped, "; "),
		Disposition: models.DispositionFlaggedForReview,
	}
	if err := s.db.Create(&audit).Error; err != nil {
		logger.Log().WithError(err).Warn("failed to write spam audit entry")
	}
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !user.Enabled || !user.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.Save(&user).Error; err != nil {
		return "", err
	}

	return s.generateToken(&user)
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.UUID,
		"email": user.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses a session token and loads its user.
func (s *AuthService) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.Where("uuid = ?", sub).First(&user).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.Enabled {
		return nil, ErrInvalidToken
	}
	return &user, nil
}
