package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamspace/guardrail/internal/models"
)

func TestGormStatusStore_GetTeam(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStatusStore(db)
	teamID := seedTeam(t, db, "Northwind Consulting", "Dana Reeve", models.TeamStatusActive)

	team, err := store.GetTeam(teamID)
	require.NoError(t, err)
	assert.Equal(t, "Northwind Consulting", team.Name)

	_, err = store.GetTeam("missing")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestGormStatusStore_UpdateTeamStatus(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStatusStore(db)
	teamID := seedTeam(t, db, "Northwind Consulting", "Dana Reeve", models.TeamStatusActive)

	until := time.Now().Add(time.Hour)
	require.NoError(t, store.UpdateTeamStatus(teamID, models.TeamStatusSuspended, "abuse", "admin-1", &until))

	team, err := store.GetTeam(teamID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamStatusSuspended, team.Status)
	assert.Equal(t, "abuse", team.StatusReason)
	require.NotNil(t, team.SuspendedUntil)

	// Leaving suspension clears the expiry.
	require.NoError(t, store.UpdateTeamStatus(teamID, models.TeamStatusActive, "restored", "admin-1", nil))
	team, err = store.GetTeam(teamID)
	require.NoError(t, err)
	assert.Nil(t, team.SuspendedUntil)

	var logs int64
	require.NoError(t, db.Model(&models.ModerationLog{}).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
}

func TestGormStatusStore_UpdateMissingTeam(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStatusStore(db)

	err := store.UpdateTeamStatus("missing", models.TeamStatusFlagged, "x", "admin-1", nil)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
