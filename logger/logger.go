// Package logger is a small leveled wrapper around the standard log package.
// Levels: off, error, warn, info and debug. Safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a config string to a Level. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LevelOff
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug", "verbose":
		return LevelDebug
	default:
		return LevelInfo
	}
}

type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
}

// New creates a logger writing to out, or os.Stderr when out is nil.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level: level,
		out:   log.New(out, "", log.LstdFlags),
	}
}

// Nop discards everything. Used by tests and optional collaborators.
func Nop() *Logger {
	return New(LevelOff, io.Discard)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) enabled(level Level) bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level >= level
}

func (l *Logger) write(prefix, format string, args ...any) {
	l.out.Output(3, prefix+fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if l.enabled(LevelDebug) {
		l.write("DEBUG: ", format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.enabled(LevelInfo) {
		l.write("INFO: ", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.enabled(LevelWarn) {
		l.write("WARNING: ", format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.enabled(LevelError) {
		l.write("ERROR: ", format, args...)
	}
}

// Fatal logs regardless of level and exits with status 1.
func (l *Logger) Fatal(format string, args ...any) {
	if l == nil {
		log.Fatalf(format, args...)
	}
	l.write("FATAL: ", format, args...)
	os.Exit(1)
}
