package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/config"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/spamcheck"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Invitation{},
		&models.ModerationLog{},
		&models.SpamAudit{},
		&models.AlertProvider{},
	))
	return db
}

type stubWelcome struct {
	sent chan models.User
}

func (s *stubWelcome) SendWelcome(user models.User) {
	s.sent <- user
}

func newAuthService(t *testing.T, db *gorm.DB) (*AuthService, *stubWelcome) {
	t.Helper()
	welcome := &stubWelcome{sent: make(chan models.User, 4)}
	cfg := config.Config{JWTSecret: "test-secret"}
	return NewAuthService(db, cfg, spamcheck.New(nil), welcome), welcome
}

func TestAuthService_Register(t *testing.T) {
	db := setupTestDB(t)
	service, welcome := newAuthService(t, db)

	// First user becomes admin.
	admin, team, err := service.Register(RegisterInput{
		Email:    "Admin@Example.com",
		Password: "password123",
		Name:     "Dana Reeve",
		TeamName: "Northwind Consulting",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.NotEmpty(t, admin.PasswordHash)
	assert.NotEqual(t, "password123", admin.PasswordHash)
	assert.Equal(t, models.TeamStatusActive, team.Status)
	assert.Equal(t, admin.ID, team.OwnerID)

	select {
	case sent := <-welcome.sent:
		assert.Equal(t, "admin@example.com", sent.Email)
	case <-time.After(time.Second):
		t.Fatal("welcome notification was never sent")
	}

	// Second user is a regular user.
	user, _, err := service.Register(RegisterInput{
		Email:    "sam@example.com",
		Password: "password123",
		Name:     "Sam Ortiz",
		TeamName: "Orchard Studio",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)

	// Clean names leave no audit trail.
	var audits int64
	require.NoError(t, db.Model(&models.SpamAudit{}).Count(&audits).Error)
	assert.Zero(t, audits)
}

func TestAuthService_RegisterDuplicates(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	_, _, err := service.Register(RegisterInput{
		Email:    "dana@example.com",
		Password: "password123",
		Name:     "Dana Reeve",
		TeamName: "Northwind Consulting",
	})
	require.NoError(t, err)

	_, _, err = service.Register(RegisterInput{
		Email:    "dana@example.com",
		Password: "password123",
		Name:     "Other Dana",
		TeamName: "Other Org Studio",
	})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, err = service.Register(RegisterInput{
		Email:    "new@example.com",
		Password: "password123",
		Name:     "New Person",
		TeamName: "Northwind Consulting",
	})
	assert.ErrorIs(t, err, ErrTeamNameExists)
}

func TestAuthService_RegisterBlocksObviousSpam(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	_, _, err := service.Register(RegisterInput{
		Email:    "scam@example.com",
		Password: "password123",
		Name:     "Legit Person",
		TeamName: "WIN FREE CASH bit.ly/scam",
	})
	assert.ErrorIs(t, err, ErrRegistrationBlocked)

	// Nothing was written.
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestAuthService_RegisterFlagsAmbiguousHighRisk(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	// High-risk pattern hit, but the score stays under the block line and no
	// obvious-scam marker is present: the signup proceeds under review.
	user, _, err := service.Register(RegisterInput{
		Email:    "edge@example.com",
		Password: "password123",
		Name:     "Legit Person",
		TeamName: "$100 crypto",
	})
	require.NoError(t, err)
	assert.NotNil(t, user)

	var audit models.SpamAudit
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, "$100 crypto", audit.OrgName)
	assert.Equal(t, models.DispositionFlaggedForReview, audit.Disposition)
	assert.Positive(t, audit.Score)
	assert.NotEmpty(t, audit.Reasons)
}

func TestAuthService_Login(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	_, _, err := service.Register(RegisterInput{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test Person",
		TeamName: "Real Org Studio",
	})
	require.NoError(t, err)

	token, err := service.Login("Test@Example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	user, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotNil(t, user.LastLogin)

	_, err = service.Login("test@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("missing@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	_, _, err := service.Register(RegisterInput{
		Email:    "off@example.com",
		Password: "password123",
		Name:     "Off Person",
		TeamName: "Quiet Org Studio",
	})
	require.NoError(t, err)

	token, err := service.Login("off@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "off@example.com").
		Update("enabled", false).Error)

	_, err = service.Login("off@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Existing tokens stop working too.
	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newAuthService(t, db)

	_, err := service.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
