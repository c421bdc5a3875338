package spamcheck

import (
	"github.com/teamspace/guardrail/internal/logger"
)

// Sink receives structured abuse alerts. Implementations must not block;
// failures are swallowed by the Detector.
type Sink interface {
	Warn(event string, fields map[string]interface{})
	Error(event string, fields map[string]interface{})
}

// logSink writes alerts to the application logger. This is the default
// alerting channel; chat-ops forwarding wraps it.
type logSink struct{}

// NewLogSink returns a Sink backed by the global structured logger.
func NewLogSink() Sink {
	return logSink{}
}

func (logSink) Warn(event string, fields map[string]interface{}) {
	logger.WithFields(fields).Warn(event)
}

func (logSink) Error(event string, fields map[string]interface{}) {
	logger.WithFields(fields).Error(event)
}
