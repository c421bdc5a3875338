package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/api/middleware"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/ratelimit"
	"github.com/teamspace/guardrail/internal/services"
	"github.com/teamspace/guardrail/internal/spamcheck"
)

func moderationRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)

	service := services.NewModerationService(
		db, services.NewGormStatusStore(db), spamcheck.New(nil), ratelimit.New(), nil)
	handler := NewModerationHandler(service)

	admin := &models.User{UUID: "admin-uuid", Email: "admin@example.com", Role: "admin", Enabled: true}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/admin", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, admin)
		c.Next()
	})
	handler.RegisterRoutes(group)
	return r, db
}

func createTeam(t *testing.T, db *gorm.DB, name, ownerName string, status models.TeamStatus) string {
	t.Helper()
	owner := models.User{
		UUID:    uuid.NewString(),
		Email:   uuid.NewString() + "@example.com",
		Name:    ownerName,
		Role:    "user",
		Enabled: true,
	}
	require.NoError(t, db.Create(&owner).Error)

	team := models.Team{UUID: uuid.NewString(), Name: name, OwnerID: owner.ID, Status: status}
	require.NoError(t, db.Create(&team).Error)
	return team.UUID
}

func TestModerationHandler_FlagAndUnsuspend(t *testing.T) {
	r, db := moderationRouter(t)
	teamID := createTeam(t, db, "Northwind Consulting", "Dana Reeve", models.TeamStatusActive)

	w := postJSON(t, r, "/admin/moderation/flag", map[string]string{"teamId": teamID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var team models.Team
	require.NoError(t, db.Where("uuid = ?", teamID).First(&team).Error)
	assert.Equal(t, models.TeamStatusFlagged, team.Status)
	assert.Equal(t, "Spam/Abuse", team.StatusReason)
	assert.Equal(t, "admin-uuid", team.ModeratedBy)

	w = postJSON(t, r, "/admin/moderation/unsuspend", map[string]string{"teamId": teamID})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("uuid = ?", teamID).First(&team).Error)
	assert.Equal(t, models.TeamStatusActive, team.Status)
}

func TestModerationHandler_Suspend(t *testing.T) {
	r, db := moderationRouter(t)
	teamID := createTeam(t, db, "Northwind Consulting", "Dana Reeve", models.TeamStatusActive)

	w := postJSON(t, r, "/admin/moderation/suspend", map[string]interface{}{
		"teamId": teamID,
		"reason": "repeated abuse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var team models.Team
	require.NoError(t, db.Where("uuid = ?", teamID).First(&team).Error)
	assert.Equal(t, models.TeamStatusSuspended, team.Status)
	assert.Equal(t, "repeated abuse", team.StatusReason)
}

func TestModerationHandler_TransitionErrors(t *testing.T) {
	r, _ := moderationRouter(t)

	// Missing team id.
	w := postJSON(t, r, "/admin/moderation/flag", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown team.
	w = postJSON(t, r, "/admin/moderation/flag", map[string]string{"teamId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModerationHandler_FlaggedAndScan(t *testing.T) {
	r, db := moderationRouter(t)
	createTeam(t, db, "Northwind Consulting", "Dana Reeve", models.TeamStatusActive)
	spamID := createTeam(t, db, "WIN FREE CASH!!! 99999", "Promo Bot", models.TeamStatusActive)

	req := httptest.NewRequest(http.MethodGet, "/admin/moderation/scan", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var scan struct {
		TotalScanned    int `json:"total_scanned"`
		SuspiciousCount int `json:"suspicious_count"`
		SuspiciousTeams []struct {
			ID string `json:"id"`
		} `json:"suspicious_teams"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scan))
	assert.Equal(t, 2, scan.TotalScanned)
	require.Equal(t, 1, scan.SuspiciousCount)
	assert.Equal(t, spamID, scan.SuspiciousTeams[0].ID)

	// Flag it, then it shows on the dashboard.
	w = postJSON(t, r, "/admin/moderation/flag", map[string]string{"teamId": spamID})
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/moderation/flagged", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var flagged []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flagged))
	require.Len(t, flagged, 1)
	assert.Equal(t, spamID, flagged[0].ID)
	assert.Equal(t, "flagged", flagged[0].Status)
}

func TestModerationHandler_BulkScanAndStats(t *testing.T) {
	r, db := moderationRouter(t)
	spamID := createTeam(t, db, "WIN FREE CASH!!! 99999", "Promo Bot", models.TeamStatusActive)

	w := postJSON(t, r, "/admin/moderation/bulk-scan", map[string]bool{"autoFlag": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		TotalScanned int `json:"total_scanned"`
		AutoFlagged  int `json:"auto_flagged"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalScanned)
	assert.Equal(t, 1, report.AutoFlagged)

	var team models.Team
	require.NoError(t, db.Where("uuid = ?", spamID).First(&team).Error)
	assert.Equal(t, models.TeamStatusFlagged, team.Status)

	req := httptest.NewRequest(http.MethodGet, "/admin/moderation/stats", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		FlaggedCount int `json:"flagged_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.FlaggedCount)
}
