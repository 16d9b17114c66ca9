// Package logger provides the CLI's diagnostic logger. It writes to stderr
// so it never interleaves with progress output on stdout.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init configures the global logger. Level is one of debug, info, warn,
// error; anything else falls back to warn, which keeps the CLI quiet unless
// something is actually wrong.
func Init(level string) {
	log = logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.WarnLevel
	}
	log.SetLevel(parsed)
}

// Get returns the global logger, initializing it at warn level if needed.
func Get() *logrus.Logger {
	if log == nil {
		Init("warn")
	}
	return log
}

// WithField returns an entry with a single field attached.
func WithField(key string, value interface{}) *logrus.Entry {
	return Get().WithField(key, value)
}

// WithFields returns an entry with multiple fields attached.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	Get().Debugf(format, args...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...interface{}) {
	Get().Warnf(format, args...)
}
