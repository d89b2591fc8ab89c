package logger

import "github.com/robfig/cron/v3"

// cronLogger adapts our Logger to robfig/cron's logging interface
type cronLogger struct {
	logger *Logger
}

// GetCronLogger returns a cron-compatible logger
func (l *Logger) GetCronLogger() cron.Logger {
	return &cronLogger{logger: l}
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debugw(msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
