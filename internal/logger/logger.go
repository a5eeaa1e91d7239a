package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	current = log.New(io.Discard)

	DebugEnabled = false

	logFile *os.File
)

// InitLogging sets up logging based on configuration. With an empty logPath
// messages go to stderr; otherwise they are appended to logPath in logfmt.
// Before InitLogging is called every message is discarded.
func InitLogging(debugMode bool, logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	DebugEnabled = debugMode

	level := log.InfoLevel
	if debugMode {
		level = log.DebugLevel
	}

	if logPath == "" {
		current = log.NewWithOptions(os.Stderr, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		})

		return nil
	}

	err := os.MkdirAll(filepath.Dir(logPath), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}

	logFile = f
	current = log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})

	return nil
}

// SetOutput redirects logging to w at the given level. Used by tests and by
// hosts embedding the engine.
func SetOutput(w io.Writer, debugMode bool) {
	mu.Lock()
	defer mu.Unlock()

	DebugEnabled = debugMode

	level := log.InfoLevel
	if debugMode {
		level = log.DebugLevel
	}

	current = log.NewWithOptions(w, log.Options{Level: level})
}

// Close closes the log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	current = log.New(io.Discard)
}

func get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return current
}

func Infof(format string, v ...interface{}) {
	get().Infof(format, v...)
}

// Errorf logs an error message.
func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	get().Warnf(format, v...)
}
