package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Fields map[string]any

var sensitiveKeys = map[string]struct{}{
	"password":     {},
	"dsn":          {},
	"databasedsn":  {},
	"database_dsn": {},
	"secret":       {},
}

var base = newBase()

func newBase() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Configure sets the level ("debug", "info", ...) and format ("json" or "text").
func Configure(level string, format string) error {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	case "text":
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}

	base.SetLevel(parsed)
	return nil
}

func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Logrus exposes the underlying logger for hooks.
func Logrus() *logrus.Logger {
	return base
}

func Debug(message string, fields Fields) {
	base.WithFields(toLogrus(fields)).Debug(message)
}

func Info(message string, fields Fields) {
	base.WithFields(toLogrus(fields)).Info(message)
}

func Warn(message string, fields Fields) {
	base.WithFields(toLogrus(fields)).Warn(message)
}

func Error(message string, err error, fields Fields) {
	entry := base.WithFields(toLogrus(fields))
	if err != nil {
		entry = entry.WithError(err)
	}

	entry.Error(message)
}

func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func toLogrus(fields Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for key, value := range fields {
		if isSensitiveKey(key) {
			out[key] = "******"
			continue
		}
		out[key] = value
	}

	return out
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
