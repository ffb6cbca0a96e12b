package common

import "log/slog"

// SlogResetLevel sets the default logger level and returns a func restoring the old one.
//
//	defer common.SlogResetLevel(slog.LevelWarn + 1)()
func SlogResetLevel(level slog.Level) (reset func()) {
	old := slog.SetLogLoggerLevel(level)
	return func() {
		slog.SetLogLoggerLevel(old)
	}
}
