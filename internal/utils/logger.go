package utils

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggerOnce sync.Once
	logger     *logrus.Logger
)

// Logger returns the shared process logger.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.InfoLevel)
	})
	return logger
}

// SetLogLevel applies LOG_LEVEL; unknown values keep the current level.
func SetLogLevel(level string) {
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		Logger().SetLevel(lvl)
	}
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	eventEntry(requestID, module, action).Info(message)
}

// LogWarn is LogEvent at warning level.
func LogWarn(requestID, module, action, message string) {
	eventEntry(requestID, module, action).Warn(message)
}

// LogError is LogEvent at error level with the cause attached.
func LogError(requestID, module, action string, err error) {
	eventEntry(requestID, module, action).WithError(err).Error(action + " failed")
}

func eventEntry(requestID, module, action string) *logrus.Entry {
	return Logger().WithFields(logrus.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	})
}
