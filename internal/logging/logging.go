// Package logging wires up structured logging: a process-wide
// logrus.Logger configured once at startup, plus a small set of
// field-building helpers so call sites stay terse.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	setupOnce sync.Once
	root      = logrus.StandardLogger()
)

// Options configures the process-wide logger.
type Options struct {
	Debug   bool
	LogFile string
}

// Setup configures the standard logger exactly once; subsequent calls
// are no-ops.
func Setup(opts Options) {
	setupOnce.Do(func() {
		if opts.Debug {
			root.SetLevel(logrus.DebugLevel)
			root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			root.SetLevel(logrus.InfoLevel)
			root.SetFormatter(&logrus.JSONFormatter{})
		}

		writers := []io.Writer{os.Stdout}
		if opts.LogFile != "" {
			f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
			} else {
				root.WithError(err).Warn("could not open log file, logging to stdout only")
			}
		}
		if len(writers) == 1 {
			root.SetOutput(writers[0])
		} else {
			root.SetOutput(io.MultiWriter(writers...))
		}
	})
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return root
}

// CredentialFields builds the safe-to-log field set for a credential: the
// id prefix only, never the secret.
func CredentialFields(credID string, attempt int) logrus.Fields {
	return logrus.Fields{
		"credential_id": credID,
		"attempt":       attempt,
	}
}

// RequestFields builds the standard per-request field set.
func RequestFields(requestID, method, path string) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	}
}

// DurationMS renders a duration in milliseconds for log fields.
func DurationMS(nanos int64) float64 {
	return float64(nanos) / 1e6
}
