package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamspace/guardrail/internal/api/middleware"
	"github.com/teamspace/guardrail/internal/services"
)

// TeamHandler serves the rate-limited organization surface: creating
// additional organizations and inviting members.
type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type createTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	team, err := h.teams.CreateTeam(user, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNameBlocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrTeamNameExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create organization"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"team": gin.H{"id": team.UUID, "name": team.Name, "status": team.Status}})
}

type inviteRequest struct {
	TeamID string `json:"teamId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

func (h *TeamHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	invitation, err := h.teams.Invite(user, req.TeamID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		case errors.Is(err, services.ErrNotTeamOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrTeamSuspended):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send invitation"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}
