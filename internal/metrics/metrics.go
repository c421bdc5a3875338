package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	spamDetectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guardrail_spam_detections_total",
		Help: "Total number of texts scored at or above the spam threshold",
	})
	highRiskHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guardrail_high_risk_hits_total",
		Help: "Total number of texts matching a high-risk scam pattern",
	})
	signupsBlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guardrail_signups_blocked_total",
		Help: "Total number of registrations hard-blocked by the signup guard",
	})
	autoFlagsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guardrail_auto_flags_total",
		Help: "Total number of teams auto-flagged by bulk scans",
	})
	rateLimitRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guardrail_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter, by action",
	}, []string{"action"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		spamDetectionsTotal,
		highRiskHitsTotal,
		signupsBlockedTotal,
		autoFlagsTotal,
		rateLimitRejectionsTotal,
	)
}

// IncSpamDetection increments the spam verdict counter.
func IncSpamDetection() { spamDetectionsTotal.Inc() }

// IncHighRiskHit increments the high-risk pattern counter.
func IncHighRiskHit() { highRiskHitsTotal.Inc() }

// IncSignupBlocked increments the blocked signup counter.
func IncSignupBlocked() { signupsBlockedTotal.Inc() }

// IncAutoFlag increments the auto-flagged team counter.
func IncAutoFlag() { autoFlagsTotal.Inc() }

// IncRateLimitRejection increments the rejection counter for an action class.
func IncRateLimitRejection(action string) {
	rateLimitRejectionsTotal.WithLabelValues(action).Inc()
}
