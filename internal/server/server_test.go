package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/config"
	"github.com/teamspace/guardrail/internal/ratelimit"
)

func TestNewServerServesHealth(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	cfg := config.Config{
		Environment:     "test",
		HTTPPort:        "0",
		JWTSecret:       "test-secret",
		InviteLimit:     5,
		InviteWindow:    15 * time.Minute,
		OrgCreateLimit:  3,
		OrgCreateWindow: time.Hour,
	}

	srv, err := New(db, cfg, ratelimit.New())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
