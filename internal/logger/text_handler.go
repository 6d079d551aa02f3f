package logger

import (
	"io"
	"log/slog"
	"time"
)

// newTextHandler returns a human readable handler for console output.
// The record timestamp is dropped; the service manager adds its own.
// Time-valued fields are rendered in tz.
func newTextHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey:
					return slog.Attr{}
				case slog.LevelKey:
					if lvl, ok := a.Value.Any().(slog.Level); ok {
						return slog.String(slog.LevelKey, levelName(lvl))
					}
					return a
				}
			}
			if a.Value.Kind() == slog.KindTime && tz != nil {
				return slog.Time(a.Key, a.Value.Time().In(tz))
			}
			return a
		},
	})
}

// levelName maps slog levels to the names used in configuration, including trace
func levelName(level slog.Level) string {
	switch {
	case level <= traceLevelValue:
		return "TRACE"
	case level <= slog.LevelDebug:
		return "DEBUG"
	case level <= slog.LevelInfo:
		return "INFO"
	case level <= slog.LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}
