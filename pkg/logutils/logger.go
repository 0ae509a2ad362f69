package logutils

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Log is the logger used by the pkg and dao packages.
var Log = logrus.New()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

//nolint:gochecknoinits // This is the only place where we should set the log level.
func init() {
	level := logrus.InfoLevel
	if gin.Mode() == gin.DebugMode {
		level = logrus.DebugLevel
	}
	// PORTAL_LOG_LEVEL overrides the mode default, e.g. "warn" in a noisy deployment.
	if v := os.Getenv("PORTAL_LOG_LEVEL"); v != "" {
		if parsed, err := logrus.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:           "2006-01-02 15:04:05",
		ForceColors:               true,
		EnvironmentOverrideColors: true,
		FullTimestamp:             true,
	})
	Log.SetReportCaller(true)
}

// WithRequest returns an entry tagged with the client request id.
func WithRequest(id string) *logrus.Entry {
	return Log.WithField("request", id)
}
