package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamspace/guardrail/internal/api/middleware"
	"github.com/teamspace/guardrail/internal/services"
)

// ModerationHandler exposes the admin moderation surface. Every route is
// registered behind the admin gate; handlers assume an admin actor.
type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/moderation/flagged", h.ListFlagged)
	r.POST("/moderation/flag", h.Flag)
	r.POST("/moderation/suspend", h.Suspend)
	r.POST("/moderation/unsuspend", h.Unsuspend)
	r.GET("/moderation/scan", h.Scan)
	r.GET("/moderation/stats", h.Stats)
	r.POST("/moderation/bulk-scan", h.BulkScan)
}

func (h *ModerationHandler) ListFlagged(c *gin.Context) {
	teams, err := h.moderation.FlaggedDashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load flagged organizations"})
		return
	}
	c.JSON(http.StatusOK, teams)
}

type moderationRequest struct {
	TeamID    string     `json:"teamId"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *ModerationHandler) Flag(c *gin.Context) {
	req, actor, ok := h.bindModerationRequest(c)
	if !ok {
		return
	}

	team, err := h.moderation.Flag(req.TeamID, req.Reason, actor)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team, "message": "Organization flagged successfully"})
}

func (h *ModerationHandler) Suspend(c *gin.Context) {
	req, actor, ok := h.bindModerationRequest(c)
	if !ok {
		return
	}

	team, err := h.moderation.Suspend(req.TeamID, req.Reason, actor, req.ExpiresAt)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team, "message": "Organization suspended successfully"})
}

func (h *ModerationHandler) Unsuspend(c *gin.Context) {
	req, actor, ok := h.bindModerationRequest(c)
	if !ok {
		return
	}

	team, err := h.moderation.Unsuspend(req.TeamID, actor)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team, "message": "Organization restored successfully"})
}

func (h *ModerationHandler) Scan(c *gin.Context) {
	report, err := h.moderation.ScanForSpam()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ModerationHandler) Stats(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	stats, err := h.moderation.Stats(user.UUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type bulkScanRequest struct {
	AutoFlag bool `json:"autoFlag"`
}

func (h *ModerationHandler) BulkScan(c *gin.Context) {
	var req bulkScanRequest
	// Empty body means report-only.
	_ = c.ShouldBindJSON(&req)

	user, _ := middleware.CurrentUser(c)
	report, err := h.moderation.BulkScanAndFlag(req.AutoFlag, user.UUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk scan failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ModerationHandler) bindModerationRequest(c *gin.Context) (moderationRequest, string, bool) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, "", false
	}
	if req.TeamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team ID is required"})
		return req, "", false
	}

	user, _ := middleware.CurrentUser(c)
	return req, user.UUID, true
}

func (h *ModerationHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team ID is required"})
	case errors.Is(err, services.ErrTeamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation action failed"})
	}
}
