package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/logger"
	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/models"
	"github.com/teamspace/guardrail/internal/spamcheck"
)

// Alert event classes, matched against AlertProvider preferences.
const (
	AlertEventSpam       = "spam"
	AlertEventModeration = "moderation"
	AlertEventRateLimit  = "rate_limit"
)

// AlertService fans abuse events out to configured chat-ops providers.
// Delivery is best-effort and asynchronous; failures are logged, never
// returned to the caller.
type AlertService struct {
	DB *gorm.DB
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{DB: db}
}

var discordWebhookRegex = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/(\d+)/([a-zA-Z0-9_-]+)`)

func normalizeURL(serviceType, rawURL string) string {
	if serviceType == "discord" {
		matches := discordWebhookRegex.FindStringSubmatch(rawURL)
		if len(matches) == 3 {
			id := matches[1]
			token := matches[2]
			return fmt.Sprintf("discord://%s@%s", token, id)
		}
	}
	return rawURL
}

// Send delivers a message to every enabled provider subscribed to eventType.
func (s *AlertService) Send(eventType, title, message string) {
	var providers []models.AlertProvider
	if err := s.DB.Where("enabled = ?", true).Find(&providers).Error; err != nil {
		logger.Log().WithError(err).Warn("failed to fetch alert providers")
		return
	}

	for _, provider := range providers {
		shouldSend := true
		switch eventType {
		case AlertEventSpam:
			shouldSend = provider.NotifySpam
		case AlertEventModeration:
			shouldSend = provider.NotifyModeration
		case AlertEventRateLimit:
			shouldSend = provider.NotifyRateLimit
		}
		if !shouldSend {
			continue
		}

		go func(p models.AlertProvider) {
			url := normalizeURL(p.Type, p.URL)
			msg := fmt.Sprintf("%s\n%s", title, message)
			if err := shoutrrr.Send(url, msg); err != nil {
				logger.Log().WithError(err).WithField("provider", p.Name).Warn("failed to send alert")
			}
		}(provider)
	}
}

// Sink returns a spamcheck.Sink that writes structured logs, bumps metrics
// and forwards to chat-ops providers. This is the alerting channel the
// scorer's side-effect contract describes.
func (s *AlertService) Sink() spamcheck.Sink {
	return alertSink{alerts: s}
}

type alertSink struct {
	alerts *AlertService
}

func (a alertSink) Warn(event string, fields map[string]interface{}) {
	logger.WithFields(fields).Warn(event)
	if fields["alert_type"] == "spam_detection" {
		if isSpam, ok := fields["is_spam"].(bool); ok && isSpam {
			metrics.IncSpamDetection()
		}
	}
	a.alerts.Send(AlertEventSpam, event, formatAlertFields(fields))
}

func (a alertSink) Error(event string, fields map[string]interface{}) {
	logger.WithFields(fields).Error(event)
	if fields["alert_type"] == "high_risk_content" {
		metrics.IncHighRiskHit()
	}
	a.alerts.Send(AlertEventSpam, event, formatAlertFields(fields))
}

func formatAlertFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
