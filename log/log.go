// Package log holds the process-wide zap logger. The default logger is
// a nop so the library stays silent unless the embedding program opts
// in via Init or SetLogger.
package log

import "go.uber.org/zap"

var logger = zap.NewNop()

// Init replaces the package logger with a production logger, or a
// development (console, debug-level) logger when debug is set.
func Init(debug bool) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger = zap.Must(cfg.Build())
}

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { logger.Fatal(msg, fields...) }

// Sync flushes buffered log entries.
func Sync() error {
	return logger.Sync()
}
