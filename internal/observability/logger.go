package observability

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger writes one JSON object per line. Records below the minimum
// level are dropped; failed logins land at warn so they survive the
// default filter while per-request lookups stay at debug.
type Logger struct {
	base *log.Logger
	min  Level
}

func NewLogger(min Level) *Logger {
	return &Logger{base: log.New(os.Stdout, "", 0), min: min}
}

// NewLoggerTo writes to the given sink. Used by tests.
func NewLoggerTo(w io.Writer, min Level) *Logger {
	return &Logger{base: log.New(w, "", 0), min: min}
}

func (l *Logger) Debug(message string, fields map[string]any) { l.write(LevelDebug, message, fields) }
func (l *Logger) Info(message string, fields map[string]any)  { l.write(LevelInfo, message, fields) }
func (l *Logger) Warn(message string, fields map[string]any)  { l.write(LevelWarn, message, fields) }
func (l *Logger) Error(message string, fields map[string]any) { l.write(LevelError, message, fields) }

func (l *Logger) write(level Level, message string, fields map[string]any) {
	if level < l.min {
		return
	}

	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level.String(),
		"message":   message,
	}
	for k, v := range fields {
		payload[k] = v
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		l.base.Println(`{"level":"error","message":"failed to encode log"}`)
		return
	}

	l.base.Println(string(encoded))
}
