package util

import (
	"fmt"
	"os"
	"sync"
)

var (
	globalLogger LoggerInterface = NewNopLogger()
	loggerOnce   sync.Once
)

// InitLogger initializes the global logger once. A logger that cannot be
// created falls back to stderr so the CLI keeps running.
func InitLogger(logLevel, logFile string, debugToConsole bool) {
	loggerOnce.Do(func() {
		logger, err := NewLogger(LoggerConfig{
			Level:   logLevel,
			File:    logFile,
			Console: debugToConsole,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			logger, _ = NewLogger(LoggerConfig{Level: "error", Console: true})
		}
		globalLogger = logger
	})
}

// Named returns a component logger derived from the global logger
func Named(component string) LoggerInterface {
	return globalLogger.Named(component)
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	globalLogger.Info(msg, fields...)
}

func LogInfof(format string, args ...interface{}) {
	globalLogger.Infof(format, args...)
}

func LogDebug(msg string, fields ...Field) {
	globalLogger.Debug(msg, fields...)
}

func LogDebugf(format string, args ...interface{}) {
	globalLogger.Debugf(format, args...)
}

func LogWarn(msg string, fields ...Field) {
	globalLogger.Warn(msg, fields...)
}

func LogWarnf(format string, args ...interface{}) {
	globalLogger.Warnf(format, args...)
}

func LogError(msg string, fields ...Field) {
	globalLogger.Error(msg, fields...)
}

func LogErrorf(format string, args ...interface{}) {
	globalLogger.Errorf(format, args...)
}
