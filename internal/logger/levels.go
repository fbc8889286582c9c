package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLogLevel maps a settings or flag value to a zap level.
// Only the levels a user can pick are accepted: debug, info, warn and error.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// fixedLevelCore ignores the global atomic level and filters by its own.
type fixedLevelCore struct {
	zapcore.Core

	level zapcore.Level
}

// Enabled reports whether l reaches the fixed level.
func (c *fixedLevelCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check adds the core to ce when the entry level is enabled.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *fixedLevelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the fixed level on the derived core.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *fixedLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &fixedLevelCore{Core: c.Core.With(fields), level: c.level}
}

// WithLevel pins a logger to lvl. The session log file uses it so that
// it keeps info lines even when the console is set to warn or error.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &fixedLevelCore{Core: core, level: lvl}
	})
}
