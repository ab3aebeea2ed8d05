// Package logging builds the structured logger shared by the store and
// expansion engine, wrapping logrus with a fixed set of leveled sinks.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors the handful of severities the engine actually emits.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// New builds a logrus.Logger writing to stderr, leveled per `level`
// (unrecognized or empty defaults to info).
func New(level Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level Level) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
