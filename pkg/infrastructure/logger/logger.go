// Package logger routes log/slog records through logrus.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConvertLogLevel maps a level name to a slog level, defaulting to info.
func ConvertLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toLogrusLevel(level slog.Level) logrus.Level {
	switch {
	case level >= slog.LevelError:
		return logrus.ErrorLevel
	case level >= slog.LevelWarn:
		return logrus.WarnLevel
	case level >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// LogrusHandler is a slog.Handler that writes through a logrus logger.
type LogrusHandler struct {
	logger *logrus.Logger
	attrs  []slog.Attr
	group  string
}

func NewLogrusHandler(logger *logrus.Logger) *LogrusHandler {
	return &LogrusHandler{logger: logger}
}

func (h *LogrusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsLevelEnabled(toLogrusLevel(level))
}

func (h *LogrusHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make(logrus.Fields, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		key := attr.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		value := attr.Value.Any()
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		fields[key] = value
		return true
	})
	h.logger.WithFields(fields).WithTime(record.Time).Log(toLogrusLevel(record.Level), record.Message)
	return nil
}

func (h *LogrusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		prefixed = append(prefixed, attr)
	}
	return &LogrusHandler{logger: h.logger, attrs: prefixed, group: h.group}
}

func (h *LogrusHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &LogrusHandler{logger: h.logger, attrs: h.attrs, group: group}
}

// SetUpLogrusAndSlog installs a JSON logrus logger as the slog default.
func SetUpLogrusAndSlog(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(toLogrusLevel(ConvertLogLevel(level)))
	slog.SetDefault(slog.New(NewLogrusHandler(logger)))
	return logger
}
