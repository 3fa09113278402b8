// Package logger is the process-wide leveled logger. Five levels:
// error, warn, info, debug, verbose (verbose maps to logrus trace).
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures level and output. An empty logFile logs to stderr only;
// otherwise output goes to both stderr and the file, appending.
func Init(logLevel, logFile string) error {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(parseLevel(logLevel))

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	return nil
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	case "verbose":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
func Warnf(format string, args ...interface{})  { log.Warnf(format, args...) }
func Infof(format string, args ...interface{})  { log.Infof(format, args...) }
func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }

// Verbosef is the chattiest tier: per-row and per-request detail.
func Verbosef(format string, args ...interface{}) { log.Tracef(format, args...) }

// WithField tags subsequent log lines, used by the request-id middleware.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}
