// Package logging is the process-wide structured logger.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the shared logger, creating it on first use.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "geoshell",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel sets the level by name ("debug", "info", "warn", "error").
func SetLevel(level string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger().SetLevel(l)
	return nil
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return Logger().With(keyvals...)
}

func Debug(msg string, args ...interface{}) {
	Logger().Debugf(msg, args...)
}

func Info(msg string, args ...interface{}) {
	Logger().Infof(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger().Warnf(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger().Errorf(msg, args...)
}
