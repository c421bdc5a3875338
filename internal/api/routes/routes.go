package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/api/handlers"
	"github.com/teamspace/guardrail/internal/api/middleware"
	"github.com/teamspace/guardrail/internal/config"
	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/ratelimit"
	"github.com/teamspace/guardrail/internal/services"
	"github.com/teamspace/guardrail/internal/spamcheck"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, limiter *ratelimit.Limiter) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Invitation{},
		&models.ModerationLog{},
		&models.SpamAudit{},
		&models.AlertProvider{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics.Register(registry)

	alerts := services.NewAlertService(db)
	detector := spamcheck.New(alerts.Sink())

	authService := services.NewAuthService(db, cfg, detector, nil)
	teamService := services.NewTeamService(db, detector)
	moderationService := services.NewModerationService(
		db, services.NewGormStatusStore(db), detector, limiter, alerts)

	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	moderationHandler := handlers.NewModerationHandler(moderationService)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	api.POST("/auth/register",
		middleware.RateLimit(limiter, alerts, ratelimit.ActionCreateOrg, cfg.OrgCreateLimit, cfg.OrgCreateWindow),
		authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	authed.POST("/teams",
		middleware.RateLimit(limiter, alerts, ratelimit.ActionCreateOrg, cfg.OrgCreateLimit, cfg.OrgCreateWindow),
		teamHandler.Create)
	authed.POST("/teams/invite",
		middleware.RateLimit(limiter, alerts, ratelimit.ActionInvite, cfg.InviteLimit, cfg.InviteWindow),
		teamHandler.Invite)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	moderationHandler.RegisterRoutes(admin)

	return nil
}
