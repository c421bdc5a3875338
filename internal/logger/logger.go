package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "guardrail"

var root = logrus.New()

// Init configures the process-wide logger. Debug mode uses human readable
// text output at debug level; otherwise entries are emitted as JSON so the
// abuse pipeline's logs can be shipped and queried.
func Init(debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	root.SetOutput(out)
	if debug {
		root.SetLevel(logrus.DebugLevel)
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		root.SetLevel(logrus.InfoLevel)
		root.SetFormatter(&logrus.JSONFormatter{})
	}
}

// Log returns an entry tagged with the service name. Moderation and spam
// events fan out from here so every line carries the same base field.
func Log() *logrus.Entry {
	return root.WithField("service", serviceName)
}

// WithFields returns a service-tagged entry carrying the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}
